package relay

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/blue32captain/parity-bridge/config"
	"github.com/blue32captain/parity-bridge/contract"
	"github.com/blue32captain/parity-bridge/contract/bridgeabi"
	"github.com/blue32captain/parity-bridge/entity"
	"github.com/blue32captain/parity-bridge/ethclient"
	"github.com/blue32captain/parity-bridge/logging"
	"github.com/blue32captain/parity-bridge/repository"
	"github.com/blue32captain/parity-bridge/utils"
)

// Pipeline relays deposits in one direction: logs observed on the source
// chain are confirmation-gated, decoded and mirrored to the destination
// chain. Each pipeline runs as a single cooperative poll loop and shares no
// mutable state with the opposite direction.
type Pipeline struct {
	logger    logging.Logger
	direction entity.Direction

	source    *LogSource
	gate      *ConfirmationGate
	decoder   *DepositDecoder
	submitter *Submitter

	srcCfg *config.BridgeSideConfig

	decodeErrMetric prometheus.Counter
}

func NewPipeline(
	ctx context.Context,
	logger logging.Logger,
	repo *repository.Repo,
	bridgeCfg *config.BridgeConfig,
	direction entity.Direction,
	srcCfg, dstCfg *config.BridgeSideConfig,
	srcClient, dstClient ethclient.Client,
) (*Pipeline, error) {
	srcContract, err := contract.NewBridgeContract(srcCfg.ContractAddress(), bridgeabi.BridgeABI)
	if err != nil {
		return nil, fmt.Errorf("failed to bind source contract: %w", err)
	}
	dstContract, err := contract.NewBridgeContract(dstCfg.ContractAddress(), bridgeabi.BridgeABI)
	if err != nil {
		return nil, fmt.Errorf("failed to bind destination contract: %w", err)
	}

	labels := prometheus.Labels{"bridge_id": bridgeCfg.ID, "direction": string(direction)}
	source, err := NewLogSource(ctx, logger.WithField("stage", "log_source"), srcClient, srcContract, repo.ScanCursors, srcCfg,
		LatestHeadBlock.With(labels), LatestScannedBlock.With(labels))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize log source: %w", err)
	}
	gate := NewConfirmationGate(logger.WithField("stage", "confirmation_gate"), srcClient, srcContract, srcCfg,
		PendingConfirmations.With(labels), ReorgedLogs.With(labels))
	submitter := NewSubmitter(logger.WithField("stage", "submitter"), dstClient, dstContract, repo.Submissions,
		bridgeCfg, direction, dstCfg,
		RelayedDeposits.With(labels), FailedDeposits.With(labels))

	return &Pipeline{
		logger:          logger,
		direction:       direction,
		source:          source,
		gate:            gate,
		decoder:         NewDepositDecoder(srcContract),
		submitter:       submitter,
		srcCfg:          srcCfg,
		decodeErrMetric: DecodeErrors.With(labels),
	}, nil
}

// Run drives the pipeline until the context is cancelled. Every stage
// finishes its current poll cycle before the loop suspends, so shutdown never
// abandons an in-flight submission silently: its record is already persisted.
func (p *Pipeline) Run(ctx context.Context) {
	p.logger.WithField("poll_interval", p.srcCfg.PollInterval).Info("starting relay pipeline")
	for {
		if finished := p.runCycle(ctx); finished {
			p.logger.Info("relay pipeline finished")
			return
		}
		if utils.ContextSleep(ctx, p.srcCfg.PollInterval) == nil {
			p.logger.Info("relay pipeline stopped")
			return
		}
	}
}

// runCycle executes one poll cycle of all stages in downstream order. A
// transient error inside a stage aborts only the rest of that stage's cycle;
// persisted cursors and records are untouched, so the next cycle retries.
func (p *Pipeline) runCycle(ctx context.Context) bool {
	for {
		log, status, err := p.source.Poll(ctx)
		if err != nil {
			p.logger.WithError(err).Error("log scan cycle aborted, will retry")
			break
		}
		if status == PollFinished {
			return true
		}
		if status != PollReady {
			break
		}
		p.gate.Push(log, p.source.LastHead())
	}

	for {
		log, status, err := p.gate.Poll(ctx)
		if err != nil {
			p.logger.WithError(err).Error("confirmation check cycle aborted, will retry")
			break
		}
		if status == PollFinished {
			return true
		}
		if status != PollReady {
			break
		}
		deposit, err := p.decoder.Decode(log)
		if err != nil {
			p.decodeErrMetric.Inc()
			p.logger.WithError(err).WithFields(logrus.Fields{
				"block_number": log.BlockNumber,
				"log_index":    log.LogIndex,
				"tx_hash":      log.TransactionHash,
			}).Error("dropping confirmed log that can't be decoded as a deposit")
			continue
		}
		if err = p.submitter.Process(ctx, deposit); err != nil {
			// the log goes back under the gate's cursor hold, a restart or the
			// next cycle re-delivers it
			p.logger.WithError(err).WithField("deposit_hash", deposit.Hash).
				Error("failed to register deposit for relaying, will retry")
			p.gate.Requeue(log)
			break
		}
	}

	// the cursor may only cover blocks whose logs are durable: either recorded
	// by the submitter or no longer tracked by the gate
	var ackErr error
	if lowest, held := p.gate.LowestTracked(); held {
		ackErr = p.source.AckBefore(ctx, lowest)
	} else {
		ackErr = p.source.AckAll(ctx)
	}
	if ackErr != nil {
		p.logger.WithError(ackErr).Error("can't persist scan cursor, will retry")
	}

	if err := p.submitter.PollCycle(ctx); err != nil {
		p.logger.WithError(err).Error("submission tracking cycle aborted, will retry")
	}
	return false
}
