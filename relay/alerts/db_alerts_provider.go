package alerts

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"

	"github.com/blue32captain/parity-bridge/db"
)

type DBAlertsProvider struct {
	db *db.DB
}

func NewDBAlertsProvider(db *db.DB) *DBAlertsProvider {
	return &DBAlertsProvider{
		db: db,
	}
}

type FailedSubmission struct {
	Direction   string         `db:"direction" json:"direction"`
	DepositHash common.Hash    `db:"deposit_hash" json:"deposit_hash"`
	Recipient   common.Address `db:"recipient" json:"recipient"`
	Value       string         `db:"value" json:"value"`
	Attempts    uint64         `db:"attempt_count" json:"attempts,string"`
	Age         time.Duration  `db:"age" json:"_value,string"`
}

func (p *DBAlertsProvider) FindFailedSubmissions(ctx context.Context, params *AlertJobParams) (interface{}, error) {
	q, args, err := sq.Select("direction", "deposit_hash", "recipient", "value", "attempt_count", "EXTRACT(EPOCH FROM now() - updated_at)::int as age").
		From("submissions").
		Where(sq.Eq{"bridge_id": params.Bridge, "status": "failed"}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	res := make([]FailedSubmission, 0, 5)
	err = p.db.SelectContext(ctx, &res, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't select alerts: %w", err)
	}
	return res, nil
}

type StuckSubmission struct {
	Direction   string        `db:"direction" json:"direction"`
	DepositHash common.Hash   `db:"deposit_hash" json:"deposit_hash"`
	Attempts    uint64        `db:"attempt_count" json:"attempts,string"`
	Age         time.Duration `db:"age" json:"_value,string"`
}

func (p *DBAlertsProvider) FindStuckSubmissions(ctx context.Context, params *AlertJobParams) (interface{}, error) {
	q, args, err := sq.Select("direction", "deposit_hash", "attempt_count", "EXTRACT(EPOCH FROM now() - created_at)::int as age").
		From("submissions").
		Where(sq.Eq{"bridge_id": params.Bridge}).
		Where(sq.Eq{"status": []string{"pending", "submitted"}}).
		Where("created_at < now() - interval '10 minutes'").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	res := make([]StuckSubmission, 0, 5)
	err = p.db.SelectContext(ctx, &res, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't select alerts: %w", err)
	}
	return res, nil
}
