package relay

import (
	"github.com/blue32captain/parity-bridge/contract"
	"github.com/blue32captain/parity-bridge/entity"
)

// DepositDecoder is the pure RawLog -> Deposit transformation. A failed decode
// signals a filter/ABI mismatch, not a transient fault, so the caller drops
// the log and reports the error instead of retrying.
type DepositDecoder struct {
	contract *contract.BridgeContract
}

func NewDepositDecoder(bridgeContract *contract.BridgeContract) *DepositDecoder {
	return &DepositDecoder{contract: bridgeContract}
}

func (d *DepositDecoder) Decode(log *entity.Log) (*entity.Deposit, error) {
	return d.contract.DecodeDeposit(log)
}
