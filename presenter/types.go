package presenter

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/blue32captain/parity-bridge/entity"
)

type TxInfo struct {
	TxHash common.Hash
	Link   string
}

type SubmissionInfo struct {
	BridgeID    string
	Direction   entity.Direction
	DepositHash common.Hash
	Recipient   common.Address
	Value       string
	Status      entity.SubmissionStatus
	Attempts    uint
	Tx          *TxInfo    `json:",omitempty"`
	CreatedAt   *time.Time `json:",omitempty"`
	UpdatedAt   *time.Time `json:",omitempty"`
}

type BridgeSideInfo struct {
	Chain            string
	ChainID          string
	Address          common.Address
	StartBlock       uint
	LastScannedBlock uint
}

type BridgeInfo struct {
	BridgeID string
	Home     *BridgeSideInfo
	Foreign  *BridgeSideInfo
}
