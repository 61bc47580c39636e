package relay

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/blue32captain/parity-bridge/config"
	"github.com/blue32captain/parity-bridge/contract"
	"github.com/blue32captain/parity-bridge/db"
	"github.com/blue32captain/parity-bridge/entity"
	"github.com/blue32captain/parity-bridge/ethclient"
	"github.com/blue32captain/parity-bridge/logging"
)

// Submitter mirrors confirmed deposits to the destination chain at most once
// per deposit hash. A submission record is persisted before the first attempt
// is issued, so a crash between the decision and the submission can at worst
// cause a retry of the same payload, never a loss. Completed records stay in
// the database as the durable already-relayed set.
type Submitter struct {
	logger    logging.Logger
	client    ethclient.Client
	contract  *contract.BridgeContract
	subs      entity.SubmissionsRepo
	bridgeID  string
	direction entity.Direction
	cfg       *config.BridgeSideConfig

	maxAttempts uint
	watchBlocks uint

	relayedMetric prometheus.Counter
	failedMetric  prometheus.Counter
}

func NewSubmitter(
	logger logging.Logger,
	client ethclient.Client,
	bridgeContract *contract.BridgeContract,
	subs entity.SubmissionsRepo,
	bridgeCfg *config.BridgeConfig,
	direction entity.Direction,
	destCfg *config.BridgeSideConfig,
	relayedMetric, failedMetric prometheus.Counter,
) *Submitter {
	return &Submitter{
		logger:        logger,
		client:        client,
		contract:      bridgeContract,
		subs:          subs,
		bridgeID:      bridgeCfg.ID,
		direction:     direction,
		cfg:           destCfg,
		maxAttempts:   bridgeCfg.MaxSubmissionAttempts,
		watchBlocks:   bridgeCfg.SubmissionWatchBlocks,
		relayedMetric: relayedMetric,
		failedMetric:  failedMetric,
	}
}

// Process registers a confirmed deposit for relaying. Duplicate deliveries of
// an already tracked deposit hash are discarded here; this is what absorbs
// re-scans after a crash or a cursor rollback.
func (s *Submitter) Process(ctx context.Context, deposit *entity.Deposit) error {
	sub, err := s.subs.GetByDepositHash(ctx, s.bridgeID, s.direction, deposit.Hash)
	if err == nil {
		s.logger.WithFields(logrus.Fields{
			"deposit_hash": sub.DepositHash,
			"status":       sub.Status,
		}).Debug("deposit is already tracked, skipping duplicate delivery")
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("can't check submission record: %w", err)
	}

	sub = &entity.Submission{
		DepositHash: deposit.Hash,
		BridgeID:    s.bridgeID,
		Direction:   s.direction,
		Recipient:   deposit.Recipient,
		Value:       deposit.Value.String(),
		Status:      entity.SubmissionPending,
	}
	if err = s.subs.Ensure(ctx, sub); err != nil {
		return fmt.Errorf("can't persist submission record: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"deposit_hash": sub.DepositHash,
		"recipient":    sub.Recipient,
		"value":        sub.Value,
	}).Info("registered new deposit for relaying")

	if err = s.trySubmit(ctx, sub); err != nil {
		// submission errors are retried on subsequent cycles, the record
		// is already durable
		s.logger.WithError(err).WithField("deposit_hash", sub.DepositHash).
			Error("initial deposit submission attempt failed")
	}
	return nil
}

// PollCycle advances all tracked submissions by one step: retries pending
// records whose backoff elapsed and checks inclusion depth of submitted ones.
func (s *Submitter) PollCycle(ctx context.Context) error {
	if err := s.checkSubmitted(ctx); err != nil {
		return err
	}
	return s.retryPending(ctx)
}

func (s *Submitter) retryPending(ctx context.Context) error {
	pending, err := s.subs.FindInStatus(ctx, s.bridgeID, s.direction, entity.SubmissionPending)
	if err != nil {
		return fmt.Errorf("can't load pending submissions: %w", err)
	}
	for _, sub := range pending {
		if sub.AttemptCount >= s.maxAttempts {
			if err = s.markFailed(ctx, sub); err != nil {
				return err
			}
			continue
		}
		if sub.LastAttemptAt != nil && time.Since(*sub.LastAttemptAt) < s.cfg.PollInterval {
			continue
		}
		if err = s.trySubmit(ctx, sub); err != nil {
			s.logger.WithError(err).WithField("deposit_hash", sub.DepositHash).
				Error("deposit submission attempt failed")
		}
	}
	return nil
}

func (s *Submitter) checkSubmitted(ctx context.Context) error {
	submitted, err := s.subs.FindInStatus(ctx, s.bridgeID, s.direction, entity.SubmissionSubmitted)
	if err != nil {
		return fmt.Errorf("can't load submitted submissions: %w", err)
	}
	if len(submitted) == 0 {
		return nil
	}
	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("can't fetch destination head block number: %w", err)
	}
	for _, sub := range submitted {
		if err = s.checkInclusion(ctx, sub, head); err != nil {
			return err
		}
	}
	return nil
}

func (s *Submitter) checkInclusion(ctx context.Context, sub *entity.Submission, head uint) error {
	receipt, err := s.client.TransactionReceiptByHash(ctx, *sub.TxHash)
	if err != nil {
		if !errors.Is(err, ethereum.NotFound) {
			return fmt.Errorf("can't fetch receipt of %s: %w", sub.TxHash, err)
		}
		if head > sub.SubmittedAtBlock+s.watchBlocks {
			s.logger.WithFields(logrus.Fields{
				"deposit_hash": sub.DepositHash,
				"tx_hash":      sub.TxHash,
			}).Warn("mirrored transaction was not included in time, resubmitting")
			return s.requeue(ctx, sub)
		}
		return nil
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		s.logger.WithFields(logrus.Fields{
			"deposit_hash": sub.DepositHash,
			"tx_hash":      sub.TxHash,
		}).Warn("mirrored transaction reverted, resubmitting")
		return s.requeue(ctx, sub)
	}
	included := uint(receipt.BlockNumber.Uint64())
	if head < included+s.cfg.RequiredConfirmations {
		return nil
	}
	sub.Status = entity.SubmissionCompleted
	if err = s.subs.Ensure(ctx, sub); err != nil {
		return fmt.Errorf("can't mark submission as completed: %w", err)
	}
	s.relayedMetric.Inc()
	s.logger.WithFields(logrus.Fields{
		"deposit_hash": sub.DepositHash,
		"tx_hash":      sub.TxHash,
		"block_number": included,
	}).Info("deposit relay completed")
	return nil
}

// requeue puts a submission back into the pending state after a failed or
// timed out attempt, or marks it permanently failed once the budget is spent.
func (s *Submitter) requeue(ctx context.Context, sub *entity.Submission) error {
	if sub.AttemptCount >= s.maxAttempts {
		return s.markFailed(ctx, sub)
	}
	sub.Status = entity.SubmissionPending
	sub.TxHash = nil
	if err := s.subs.Ensure(ctx, sub); err != nil {
		return fmt.Errorf("can't requeue submission: %w", err)
	}
	return nil
}

func (s *Submitter) markFailed(ctx context.Context, sub *entity.Submission) error {
	sub.Status = entity.SubmissionFailed
	if err := s.subs.Ensure(ctx, sub); err != nil {
		return fmt.Errorf("can't mark submission as failed: %w", err)
	}
	s.failedMetric.Inc()
	s.logger.WithFields(logrus.Fields{
		"deposit_hash": sub.DepositHash,
		"recipient":    sub.Recipient,
		"value":        sub.Value,
		"attempts":     sub.AttemptCount,
	}).Error("deposit relay permanently failed, manual intervention required")
	return nil
}

// trySubmit issues one submission attempt with the same encoded payload. The
// incremented attempt count is persisted before the transaction is sent.
func (s *Submitter) trySubmit(ctx context.Context, sub *entity.Submission) error {
	value, ok := new(big.Int).SetString(sub.Value, 10)
	if !ok {
		return fmt.Errorf("submission record carries unparseable value %q", sub.Value)
	}
	calldata, err := s.contract.BuildDepositCall(&entity.Deposit{
		Recipient: sub.Recipient,
		Value:     value,
		Hash:      sub.DepositHash,
	})
	if err != nil {
		return err
	}

	now := time.Now()
	sub.AttemptCount++
	sub.LastAttemptAt = &now
	if err = s.subs.Ensure(ctx, sub); err != nil {
		return fmt.Errorf("can't persist submission attempt: %w", err)
	}

	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("can't fetch destination head block number: %w", err)
	}

	to := s.contract.Address()
	txHash, err := s.client.SendTransaction(ctx, ethclient.SendTxArgs{
		From:     s.cfg.AccountAddress(),
		To:       &to,
		Gas:      hexutil.Uint64(s.cfg.DepositTx.GasLimit),
		GasPrice: (*hexutil.Big)(new(big.Int).SetUint64(s.cfg.DepositTx.GasPrice)),
		Value:    (*hexutil.Big)(new(big.Int).SetUint64(s.cfg.DepositTx.Value)),
		Data:     calldata,
	})
	if err != nil {
		return fmt.Errorf("destination node rejected the deposit transaction: %w", err)
	}

	sub.Status = entity.SubmissionSubmitted
	sub.TxHash = &txHash
	sub.SubmittedAtBlock = head
	if err = s.subs.Ensure(ctx, sub); err != nil {
		return fmt.Errorf("can't persist accepted submission: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"deposit_hash": sub.DepositHash,
		"tx_hash":      txHash,
		"attempt":      sub.AttemptCount,
	}).Info("submitted mirrored deposit transaction")
	return nil
}

