package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type SubmissionStatus string

const (
	// SubmissionPending is recorded before the first submission attempt.
	SubmissionPending SubmissionStatus = "pending"
	// SubmissionSubmitted means the destination node accepted the transaction
	// and the relay is waiting for it to reach the confirmation depth.
	SubmissionSubmitted SubmissionStatus = "submitted"
	// SubmissionCompleted is terminal, the mirrored transaction is final.
	SubmissionCompleted SubmissionStatus = "completed"
	// SubmissionFailed is terminal, the deposit exhausted its attempt budget.
	SubmissionFailed SubmissionStatus = "failed"
)

// Submission tracks the relaying of one deposit to the destination chain,
// keyed by the deposit hash. Completed rows are never deleted, they are the
// durable "already relayed" set enforcing the at-most-once guarantee.
type Submission struct {
	DepositHash      common.Hash      `db:"deposit_hash"`
	BridgeID         string           `db:"bridge_id"`
	Direction        Direction        `db:"direction"`
	Recipient        common.Address   `db:"recipient"`
	Value            string           `db:"value"`
	Status           SubmissionStatus `db:"status"`
	TxHash           *common.Hash     `db:"tx_hash"`
	SubmittedAtBlock uint             `db:"submitted_at_block"`
	AttemptCount     uint             `db:"attempt_count"`
	LastAttemptAt    *time.Time       `db:"last_attempt_at"`
	CreatedAt        *time.Time       `db:"created_at"`
	UpdatedAt        *time.Time       `db:"updated_at"`
}

type SubmissionsRepo interface {
	Ensure(ctx context.Context, sub *Submission) error
	GetByDepositHash(ctx context.Context, bridgeID string, direction Direction, hash common.Hash) (*Submission, error)
	FindByDepositHash(ctx context.Context, bridgeID string, hash common.Hash) ([]*Submission, error)
	FindInStatus(ctx context.Context, bridgeID string, direction Direction, status SubmissionStatus) ([]*Submission, error)
	FindFailed(ctx context.Context, bridgeID string) ([]*Submission, error)
}
