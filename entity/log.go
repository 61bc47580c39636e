package entity

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Log is a raw event log fetched from a chain node. It is kept only until it
// is either decoded into a Deposit or discarded by the confirmation gate.
type Log struct {
	ChainID         string
	Address         common.Address
	Topic0          *common.Hash
	Topic1          *common.Hash
	Topic2          *common.Hash
	Topic3          *common.Hash
	Data            []byte
	BlockNumber     uint
	LogIndex        uint
	TransactionHash common.Hash
}

func NewLog(chainID string, log types.Log) *Log {
	res := &Log{
		ChainID:         chainID,
		Address:         log.Address,
		Data:            log.Data,
		BlockNumber:     uint(log.BlockNumber),
		LogIndex:        uint(log.Index),
		TransactionHash: log.TxHash,
	}
	topics := []*common.Hash{nil, nil, nil, nil}
	for i := range log.Topics {
		topics[i] = &log.Topics[i]
	}
	res.Topic0, res.Topic1, res.Topic2, res.Topic3 = topics[0], topics[1], topics[2], topics[3]
	return res
}

func (l *Log) Topics() []common.Hash {
	topics := make([]common.Hash, 0, 4)
	for _, topic := range []*common.Hash{l.Topic0, l.Topic1, l.Topic2, l.Topic3} {
		if topic == nil {
			break
		}
		topics = append(topics, *topic)
	}
	return topics
}
