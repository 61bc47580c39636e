package presenter

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/blue32captain/parity-bridge/entity"
)

var formats = map[string]string{
	"1":   "https://etherscan.io/tx/%s",
	"4":   "https://rinkeby.etherscan.io/tx/%s",
	"42":  "https://kovan.etherscan.io/tx/%s",
	"56":  "https://bscscan.com/tx/%s",
	"77":  "https://blockscout.com/poa/sokol/tx/%s",
	"99":  "https://blockscout.com/poa/core/tx/%s",
	"100": "https://blockscout.com/xdai/mainnet/tx/%s",
}

func txLink(chainID string, txHash common.Hash) string {
	if format, ok := formats[chainID]; ok {
		return fmt.Sprintf(format, txHash)
	}
	return txHash.String()
}

func submissionToInfo(sub *entity.Submission, destChainID string) *SubmissionInfo {
	info := &SubmissionInfo{
		BridgeID:    sub.BridgeID,
		Direction:   sub.Direction,
		DepositHash: sub.DepositHash,
		Recipient:   sub.Recipient,
		Value:       sub.Value,
		Status:      sub.Status,
		Attempts:    sub.AttemptCount,
		CreatedAt:   sub.CreatedAt,
		UpdatedAt:   sub.UpdatedAt,
	}
	if sub.TxHash != nil {
		info.Tx = &TxInfo{
			TxHash: *sub.TxHash,
			Link:   txLink(destChainID, *sub.TxHash),
		}
	}
	return info
}
