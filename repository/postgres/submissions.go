package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"

	"github.com/blue32captain/parity-bridge/db"
	"github.com/blue32captain/parity-bridge/entity"
)

type submissionsRepo basePostgresRepo

func NewSubmissionsRepo(table string, db *db.DB) entity.SubmissionsRepo {
	return (*submissionsRepo)(newBasePostgresRepo(table, db))
}

func (r *submissionsRepo) Ensure(ctx context.Context, sub *entity.Submission) error {
	q, args, err := sq.Insert(r.table).
		Columns("deposit_hash", "bridge_id", "direction", "recipient", "value", "status", "tx_hash", "submitted_at_block", "attempt_count", "last_attempt_at").
		Values(sub.DepositHash, sub.BridgeID, sub.Direction, sub.Recipient, sub.Value, sub.Status, sub.TxHash, sub.SubmittedAtBlock, sub.AttemptCount, sub.LastAttemptAt).
		Suffix("ON CONFLICT (bridge_id, direction, deposit_hash) DO UPDATE SET updated_at = NOW(), " +
			"status = EXCLUDED.status, tx_hash = EXCLUDED.tx_hash, submitted_at_block = EXCLUDED.submitted_at_block, " +
			"attempt_count = EXCLUDED.attempt_count, last_attempt_at = EXCLUDED.last_attempt_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert submission: %w", err)
	}
	return nil
}

func (r *submissionsRepo) GetByDepositHash(ctx context.Context, bridgeID string, direction entity.Direction, hash common.Hash) (*entity.Submission, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"bridge_id": bridgeID, "direction": direction, "deposit_hash": hash}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	sub := new(entity.Submission)
	err = r.db.GetContext(ctx, sub, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get submission by deposit hash: %w", err)
	}
	return sub, nil
}

func (r *submissionsRepo) FindByDepositHash(ctx context.Context, bridgeID string, hash common.Hash) ([]*entity.Submission, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"bridge_id": bridgeID, "deposit_hash": hash}).
		OrderBy("direction").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	subs := make([]*entity.Submission, 0, 2)
	err = r.db.SelectContext(ctx, &subs, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't find submissions by deposit hash: %w", err)
	}
	return subs, nil
}

func (r *submissionsRepo) FindInStatus(ctx context.Context, bridgeID string, direction entity.Direction, status entity.SubmissionStatus) ([]*entity.Submission, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"bridge_id": bridgeID, "direction": direction, "status": status}).
		OrderBy("created_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	subs := make([]*entity.Submission, 0, 10)
	err = r.db.SelectContext(ctx, &subs, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't find submissions in status %s: %w", status, err)
	}
	return subs, nil
}

func (r *submissionsRepo) FindFailed(ctx context.Context, bridgeID string) ([]*entity.Submission, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"bridge_id": bridgeID, "status": entity.SubmissionFailed}).
		OrderBy("created_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	subs := make([]*entity.Submission, 0, 10)
	err = r.db.SelectContext(ctx, &subs, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't find failed submissions: %w", err)
	}
	return subs, nil
}
