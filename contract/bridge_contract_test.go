package contract_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/blue32captain/parity-bridge/contract"
	"github.com/blue32captain/parity-bridge/contract/abi"
	"github.com/blue32captain/parity-bridge/contract/bridgeabi"
	"github.com/blue32captain/parity-bridge/entity"
)

var (
	contractAddr = common.HexToAddress("0x4aa42145Aa6Ebf72e164C9bBC74fbD3788045016")
	recipient    = common.HexToAddress("0xAAA0000000000000000000000000000000000001")
	txHash       = common.HexToHash("0x5252525252525252525252525252525252525252525252525252525252525252")
)

func newTestContract(t *testing.T) *contract.BridgeContract {
	t.Helper()
	c, err := contract.NewBridgeContract(contractAddr, bridgeabi.BridgeABI)
	require.NoError(t, err)
	return c
}

func newDepositLog(t *testing.T, value *big.Int) *entity.Log {
	t.Helper()
	data, err := bridgeabi.BridgeABI.Events[bridgeabi.DepositEvent].Inputs.Pack(recipient, value)
	require.NoError(t, err)
	return &entity.Log{
		ChainID:         "1",
		Address:         contractAddr,
		Topic0:          &bridgeabi.DepositEventSignature,
		Data:            data,
		BlockNumber:     100,
		LogIndex:        0,
		TransactionHash: txHash,
	}
}

func TestNewBridgeContractRequiresDepositABI(t *testing.T) {
	t.Parallel()

	c, err := contract.NewBridgeContract(contractAddr, abi.MustReadABI(`[]`))
	require.Error(t, err)
	require.Nil(t, c)
}

func TestDecodeDeposit(t *testing.T) {
	t.Parallel()

	c := newTestContract(t)
	deposit, err := c.DecodeDeposit(newDepositLog(t, big.NewInt(1000)))
	require.NoError(t, err)
	require.Equal(t, &entity.Deposit{
		Recipient: recipient,
		Value:     big.NewInt(1000),
		Hash:      txHash,
	}, deposit)
}

func TestDecodeDepositRejectsForeignTopic(t *testing.T) {
	t.Parallel()

	c := newTestContract(t)
	log := newDepositLog(t, big.NewInt(1000))
	otherTopic := common.HexToHash("0x01")
	log.Topic0 = &otherTopic

	deposit, err := c.DecodeDeposit(log)
	require.ErrorIs(t, err, contract.ErrTypeMismatch)
	require.Nil(t, deposit)
}

func TestDecodeDepositRejectsMalformedData(t *testing.T) {
	t.Parallel()

	c := newTestContract(t)
	log := newDepositLog(t, big.NewInt(1000))
	log.Data = log.Data[:16]

	deposit, err := c.DecodeDeposit(log)
	require.Error(t, err)
	require.Nil(t, deposit)
}

// Encoding a deposit call and decoding an equivalent synthetic log must agree
// on recipient and value. The hash is derived from the transaction, not
// round-tripped through the event.
func TestDepositCallRoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestContract(t)
	log := newDepositLog(t, big.NewInt(1000))
	deposit, err := c.DecodeDeposit(log)
	require.NoError(t, err)

	calldata, err := c.BuildDepositCall(deposit)
	require.NoError(t, err)

	method, err := bridgeabi.BridgeABI.MethodById(calldata[:4])
	require.NoError(t, err)
	require.Equal(t, bridgeabi.DepositFunction, method.Name)

	args, err := method.Inputs.Unpack(calldata[4:])
	require.NoError(t, err)
	require.Len(t, args, 3)
	require.Equal(t, deposit.Recipient, args[0])
	require.Equal(t, deposit.Value, args[1])
	require.Equal(t, [32]byte(deposit.Hash), args[2])
}

func TestDepositFilter(t *testing.T) {
	t.Parallel()

	c := newTestContract(t)
	q := c.DepositFilter()
	require.Equal(t, []common.Address{contractAddr}, q.Addresses)
	require.Equal(t, [][]common.Hash{{bridgeabi.DepositEventSignature}}, q.Topics)
	require.Nil(t, q.FromBlock)
	require.Nil(t, q.ToBlock)
}
