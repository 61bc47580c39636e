package relay

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/blue32captain/parity-bridge/config"
	"github.com/blue32captain/parity-bridge/contract"
	"github.com/blue32captain/parity-bridge/entity"
	"github.com/blue32captain/parity-bridge/ethclient"
	"github.com/blue32captain/parity-bridge/logging"
)

type pendingConfirmation struct {
	log        *entity.Log
	observedAt uint
}

// ConfirmationGate buffers observed logs and releases each one only once its
// block is at least the required number of confirmations deep. Before
// releasing, the log's presence is re-checked against the node; entries whose
// block was reorganized out are discarded silently. The buffer keeps arrival
// order, which the log source guarantees to be (block, index) ascending. The
// buffer is volatile: the log source must not acknowledge blocks the gate
// still tracks, see LowestTracked.
type ConfirmationGate struct {
	logger   logging.Logger
	client   ethclient.Client
	contract *contract.BridgeContract
	cfg      *config.BridgeSideConfig

	buf       []*pendingConfirmation
	confirmed []*entity.Log

	pendingMetric prometheus.Gauge
	reorgedMetric prometheus.Counter
}

func NewConfirmationGate(
	logger logging.Logger,
	client ethclient.Client,
	bridgeContract *contract.BridgeContract,
	cfg *config.BridgeSideConfig,
	pendingMetric prometheus.Gauge,
	reorgedMetric prometheus.Counter,
) *ConfirmationGate {
	return &ConfirmationGate{
		logger:        logger,
		client:        client,
		contract:      bridgeContract,
		cfg:           cfg,
		pendingMetric: pendingMetric,
		reorgedMetric: reorgedMetric,
	}
}

// LowestTracked returns the lowest block number of any log still held in the
// gate's memory, in either the pending buffer or the confirmed queue. The log
// source must keep its persisted cursor below this block so a restart
// re-delivers the held logs.
func (g *ConfirmationGate) LowestTracked() (uint, bool) {
	lowest, ok := uint(0), false
	if len(g.confirmed) > 0 {
		lowest, ok = g.confirmed[0].BlockNumber, true
	}
	if len(g.buf) > 0 && (!ok || g.buf[0].log.BlockNumber < lowest) {
		lowest, ok = g.buf[0].log.BlockNumber, true
	}
	return lowest, ok
}

// Requeue puts an already released log back at the front of the confirmed
// queue after a downstream failure, keeping it covered by LowestTracked.
func (g *ConfirmationGate) Requeue(log *entity.Log) {
	g.confirmed = append([]*entity.Log{log}, g.confirmed...)
}

func (g *ConfirmationGate) Push(log *entity.Log, observedAt uint) {
	g.buf = append(g.buf, &pendingConfirmation{
		log:        log,
		observedAt: observedAt,
	})
	g.pendingMetric.Set(float64(len(g.buf)))
}

// Poll emits the next confirmed log. When the output queue is drained it
// fetches the current head and promotes every buffered entry that has reached
// the confirmation depth, stopping at the first one that has not; later
// entries cannot be deeper since the buffer is block ordered.
func (g *ConfirmationGate) Poll(ctx context.Context) (*entity.Log, PollStatus, error) {
	if ctx.Err() != nil {
		return nil, PollFinished, nil
	}
	if len(g.confirmed) == 0 {
		if len(g.buf) == 0 {
			return nil, PollPending, nil
		}
		if err := g.promote(ctx); err != nil {
			return nil, PollPending, err
		}
		if len(g.confirmed) == 0 {
			return nil, PollPending, nil
		}
	}
	log := g.confirmed[0]
	g.confirmed = g.confirmed[1:]
	return log, PollReady, nil
}

func (g *ConfirmationGate) promote(ctx context.Context) error {
	head, err := g.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("can't fetch head block number: %w", err)
	}
	promoted := 0
	for _, entry := range g.buf {
		if entry.log.BlockNumber+g.cfg.RequiredConfirmations > head {
			break
		}
		present, err := g.stillPresent(ctx, entry.log)
		if err != nil {
			return err
		}
		if present {
			g.confirmed = append(g.confirmed, entry.log)
		} else {
			g.reorgedMetric.Inc()
			g.logger.WithFields(logrus.Fields{
				"block_number": entry.log.BlockNumber,
				"log_index":    entry.log.LogIndex,
				"tx_hash":      entry.log.TransactionHash,
				"observed_at":  entry.observedAt,
			}).Warn("dropping deposit log reorganized out of the canonical chain")
		}
		promoted++
	}
	g.buf = g.buf[promoted:]
	g.pendingMetric.Set(float64(len(g.buf)))
	return nil
}

// stillPresent re-queries the node for the log's block and checks that the
// same (block, index, transaction) triple is still reported. The safe request
// variant guards against a lagging replica answering with an empty result,
// which would otherwise read as a reorg.
func (g *ConfirmationGate) stillPresent(ctx context.Context, log *entity.Log) (bool, error) {
	q := g.contract.DepositFilter()
	q.FromBlock = big.NewInt(int64(log.BlockNumber))
	q.ToBlock = big.NewInt(int64(log.BlockNumber))
	var logs []types.Log
	var err error
	if g.cfg.Chain.SafeLogsRequest {
		logs, err = g.client.FilterLogsSafe(ctx, q)
	} else {
		logs, err = g.client.FilterLogs(ctx, q)
	}
	if err != nil {
		return false, fmt.Errorf("can't re-query logs at block %d: %w", log.BlockNumber, err)
	}
	for _, candidate := range logs {
		if uint(candidate.Index) == log.LogIndex && candidate.TxHash == log.TransactionHash && !candidate.Removed {
			return true, nil
		}
	}
	return false, nil
}
