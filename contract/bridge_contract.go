package contract

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/blue32captain/parity-bridge/contract/abi"
	"github.com/blue32captain/parity-bridge/contract/bridgeabi"
	"github.com/blue32captain/parity-bridge/entity"
)

var (
	ErrWrongFieldCount = errors.New("wrong number of decoded deposit event fields")
	ErrTypeMismatch    = errors.New("deposit event field has unexpected type")
)

// BridgeContract translates between one bridge contract's binary log/call
// encoding and typed deposits. It holds no mutable state.
type BridgeContract struct {
	address common.Address
	abi     abi.ABI
}

// NewBridgeContract verifies that the ABI carries the deposit function and
// the Deposit event. A missing entry is a configuration defect, the relay
// refuses to start on it.
func NewBridgeContract(addr common.Address, contractABI abi.ABI) (*BridgeContract, error) {
	if _, ok := contractABI.Methods[bridgeabi.DepositFunction]; !ok {
		return nil, fmt.Errorf("contract ABI does not declare the %s function", bridgeabi.DepositFunction)
	}
	if _, ok := contractABI.Events[bridgeabi.DepositEvent]; !ok {
		return nil, fmt.Errorf("contract ABI does not declare the %s event", bridgeabi.DepositEvent)
	}
	return &BridgeContract{
		address: addr,
		abi:     contractABI,
	}, nil
}

func (c *BridgeContract) Address() common.Address {
	return c.address
}

// BuildDepositCall encodes the mirrored deposit(recipient, value, hash) call
// for the destination chain. The argument order is fixed by the contract.
func (c *BridgeContract) BuildDepositCall(deposit *entity.Deposit) ([]byte, error) {
	data, err := c.abi.Pack(bridgeabi.DepositFunction, deposit.Recipient, deposit.Value, [32]byte(deposit.Hash))
	if err != nil {
		return nil, fmt.Errorf("can't encode deposit calldata: %w", err)
	}
	return data, nil
}

// DepositFilter matches the contract's Deposit event logs. The block range is
// left unset, the log source supplies it per scan cycle.
func (c *BridgeContract) DepositFilter() ethereum.FilterQuery {
	return ethereum.FilterQuery{
		Addresses: []common.Address{c.address},
		Topics:    [][]common.Hash{{bridgeabi.DepositEventSignature}},
	}
}

// DecodeDeposit turns a raw Deposit event log into a typed deposit. The
// idempotency hash is derived from the originating transaction hash, so it is
// stable across reorganizations that keep the transaction itself.
func (c *BridgeContract) DecodeDeposit(log *entity.Log) (*entity.Deposit, error) {
	event := c.abi.Events[bridgeabi.DepositEvent]
	topics := log.Topics()
	if len(topics) == 0 || topics[0] != event.ID {
		return nil, fmt.Errorf("log topics do not match the %s event: %w", bridgeabi.DepositEvent, ErrTypeMismatch)
	}
	values, err := abi.DecodeEventLog(&event, topics, log.Data)
	if err != nil {
		return nil, fmt.Errorf("can't decode deposit event: %w", err)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("decoded %d fields instead of 2: %w", len(values), ErrWrongFieldCount)
	}
	recipient, ok := values["recipient"].(common.Address)
	if !ok {
		return nil, fmt.Errorf("expected address recipient: %w", ErrTypeMismatch)
	}
	value, ok := values["value"].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected uint256 value: %w", ErrTypeMismatch)
	}
	return &entity.Deposit{
		Recipient: recipient,
		Value:     value,
		Hash:      log.TransactionHash,
	}, nil
}
