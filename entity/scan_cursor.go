package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ScanCursor is the highest block fully scanned for bridge logs on one chain.
// It is persisted so a restart resumes scanning where the previous run left off.
type ScanCursor struct {
	ChainID          string         `db:"chain_id"`
	Address          common.Address `db:"address"`
	LastScannedBlock uint           `db:"last_scanned_block"`
	CreatedAt        *time.Time     `db:"created_at"`
	UpdatedAt        *time.Time     `db:"updated_at"`
}

type ScanCursorsRepo interface {
	Ensure(ctx context.Context, cursor *ScanCursor) error
	GetByChainIDAndAddress(ctx context.Context, chainID string, addr common.Address) (*ScanCursor, error)
}
