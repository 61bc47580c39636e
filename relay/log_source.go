package relay

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

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

// LogSource produces an ordered, restartable sequence of deposit logs for one
// bridge contract. The persisted scan cursor is advanced only through AckAll
// or AckBefore, once every log of a scanned range is durable downstream, so a
// crash anywhere in between leads to re-delivery rather than loss.
type LogSource struct {
	logger   logging.Logger
	client   ethclient.Client
	contract *contract.BridgeContract
	cursors  entity.ScanCursorsRepo
	cfg      *config.BridgeSideConfig

	cursor *entity.ScanCursor
	queue  []*entity.Log
	// end of the scanned-but-not-yet-acknowledged range, candidate cursor value
	scannedTo uint
	lastHead  uint

	headMetric    prometheus.Gauge
	scannedMetric prometheus.Gauge
}

func NewLogSource(
	ctx context.Context,
	logger logging.Logger,
	client ethclient.Client,
	bridgeContract *contract.BridgeContract,
	cursors entity.ScanCursorsRepo,
	cfg *config.BridgeSideConfig,
	headMetric, scannedMetric prometheus.Gauge,
) (*LogSource, error) {
	cursor, err := cursors.GetByChainIDAndAddress(ctx, cfg.Chain.ChainID, cfg.ContractAddress())
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("failed to read scan cursor: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"chain_id":    cfg.Chain.ChainID,
			"address":     cfg.Address,
			"start_block": cfg.StartBlock,
		}).Warn("scan cursor is not present, starting scanning from the configured start block")
		cursor = &entity.ScanCursor{
			ChainID:          cfg.Chain.ChainID,
			Address:          cfg.ContractAddress(),
			LastScannedBlock: cfg.StartBlock - 1,
		}
	}
	return &LogSource{
		logger:        logger,
		client:        client,
		contract:      bridgeContract,
		cursors:       cursors,
		cfg:           cfg,
		cursor:        cursor,
		scannedTo:     cursor.LastScannedBlock,
		headMetric:    headMetric,
		scannedMetric: scannedMetric,
	}, nil
}

// Poll emits the next observed log, or reports pending when the chain head has
// not moved past the scan frontier. A transient node error aborts the current
// scan without advancing any state; the same range is re-queried on the next
// cycle.
func (s *LogSource) Poll(ctx context.Context) (*entity.Log, PollStatus, error) {
	if ctx.Err() != nil {
		return nil, PollFinished, nil
	}
	if len(s.queue) == 0 {
		if err := s.scan(ctx); err != nil {
			return nil, PollPending, err
		}
		if len(s.queue) == 0 {
			return nil, PollPending, nil
		}
	}
	log := s.queue[0]
	s.queue = s.queue[1:]
	return log, PollReady, nil
}

// LastHead is the head block number seen by the most recent scan.
func (s *LogSource) LastHead() uint {
	return s.lastHead
}

// AckAll marks every scanned block as durably processed downstream.
func (s *LogSource) AckAll(ctx context.Context) error {
	return s.ackThrough(ctx, s.scannedTo)
}

// AckBefore marks blocks up to block-1 as durably processed. Used when a
// downstream stage still holds logs from block onward in volatile memory; a
// restart then re-scans from that block and re-delivers them.
func (s *LogSource) AckBefore(ctx context.Context, block uint) error {
	if block == 0 {
		return nil
	}
	return s.ackThrough(ctx, block-1)
}

func (s *LogSource) ackThrough(ctx context.Context, block uint) error {
	if block > s.scannedTo {
		block = s.scannedTo
	}
	if len(s.queue) > 0 && s.queue[0].BlockNumber <= block {
		block = s.queue[0].BlockNumber - 1
	}
	if block <= s.cursor.LastScannedBlock {
		return nil
	}
	prev := s.cursor.LastScannedBlock
	s.cursor.LastScannedBlock = block
	if err := s.cursors.Ensure(ctx, s.cursor); err != nil {
		s.cursor.LastScannedBlock = prev
		return fmt.Errorf("can't persist scan cursor: %w", err)
	}
	s.scannedMetric.Set(float64(block))
	return nil
}

func (s *LogSource) scan(ctx context.Context) error {
	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("can't fetch head block number: %w", err)
	}
	s.lastHead = head
	s.headMetric.Set(float64(head))
	if head <= s.scannedTo {
		return nil
	}
	from := s.scannedTo + 1
	to := head
	if to-from+1 > s.cfg.MaxBlockRangeSize {
		to = from + s.cfg.MaxBlockRangeSize - 1
	}

	q := s.contract.DepositFilter()
	q.FromBlock = big.NewInt(int64(from))
	q.ToBlock = big.NewInt(int64(to))

	var logs []types.Log
	if s.cfg.Chain.SafeLogsRequest {
		logs, err = s.client.FilterLogsSafe(ctx, q)
	} else {
		logs, err = s.client.FilterLogs(ctx, q)
	}
	if err != nil {
		return fmt.Errorf("can't fetch logs in range (%d, %d): %w", from, to, err)
	}

	queue := make([]*entity.Log, 0, len(logs))
	for _, log := range logs {
		if log.Removed {
			continue
		}
		queue = append(queue, entity.NewLog(s.cfg.Chain.ChainID, log))
	}
	sort.Slice(queue, func(i, j int) bool {
		a, b := queue[i], queue[j]
		return a.BlockNumber < b.BlockNumber || (a.BlockNumber == b.BlockNumber && a.LogIndex < b.LogIndex)
	})

	s.logger.WithFields(logrus.Fields{
		"count":      len(queue),
		"from_block": from,
		"to_block":   to,
	}).Debug("scanned logs in range")
	s.queue = queue
	s.scannedTo = to
	return nil
}
