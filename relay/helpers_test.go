package relay_test

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blue32captain/parity-bridge/config"
	"github.com/blue32captain/parity-bridge/db"
	"github.com/blue32captain/parity-bridge/entity"
	"github.com/blue32captain/parity-bridge/ethclient"
)

type fakeClient struct {
	mu       sync.Mutex
	head     uint
	logs     []types.Log
	receipts map[common.Hash]*types.Receipt
	sent     []ethclient.SendTxArgs
	sendErr  error
}

func (c *fakeClient) BlockNumber(_ context.Context) (uint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head, nil
}

func (c *fakeClient) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]types.Log, 0, len(c.logs))
	for _, log := range c.logs {
		if q.FromBlock != nil && log.BlockNumber < q.FromBlock.Uint64() {
			continue
		}
		if q.ToBlock != nil && log.BlockNumber > q.ToBlock.Uint64() {
			continue
		}
		if len(q.Addresses) > 0 && log.Address != q.Addresses[0] {
			continue
		}
		res = append(res, log)
	}
	return res, nil
}

func (c *fakeClient) FilterLogsSafe(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return c.FilterLogs(ctx, q)
}

func (c *fakeClient) SendTransaction(_ context.Context, args ethclient.SendTxArgs) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return common.Hash{}, c.sendErr
	}
	c.sent = append(c.sent, args)
	return common.BigToHash(big.NewInt(int64(len(c.sent)))), nil
}

func (c *fakeClient) TransactionReceiptByHash(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if receipt, ok := c.receipts[hash]; ok {
		return receipt, nil
	}
	return nil, ethereum.NotFound
}

func (c *fakeClient) setHead(head uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = head
}

func (c *fakeClient) setReceipt(hash common.Hash, receipt *types.Receipt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.receipts == nil {
		c.receipts = make(map[common.Hash]*types.Receipt)
	}
	c.receipts[hash] = receipt
}

func (c *fakeClient) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// staleReadClient mimics a load-balanced endpoint whose plain eth_getLogs
// answers come from a replica lagging behind the head: queries touching
// blocks at or past staleFrom return nothing, while the safe variant reaches
// an up-to-date node.
type staleReadClient struct {
	fakeClient
	staleFrom uint64
}

func (c *staleReadClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	if q.ToBlock != nil && q.ToBlock.Uint64() >= c.staleFrom {
		return nil, nil
	}
	return c.fakeClient.FilterLogs(ctx, q)
}

type inMemoryCursorsRepo struct {
	cursors map[string]*entity.ScanCursor
}

func newInMemoryCursorsRepo() *inMemoryCursorsRepo {
	return &inMemoryCursorsRepo{cursors: make(map[string]*entity.ScanCursor)}
}

func cursorKey(chainID string, addr common.Address) string {
	return chainID + "/" + addr.String()
}

func (r *inMemoryCursorsRepo) Ensure(_ context.Context, cursor *entity.ScanCursor) error {
	c := *cursor
	r.cursors[cursorKey(cursor.ChainID, cursor.Address)] = &c
	return nil
}

func (r *inMemoryCursorsRepo) GetByChainIDAndAddress(_ context.Context, chainID string, addr common.Address) (*entity.ScanCursor, error) {
	if cursor, ok := r.cursors[cursorKey(chainID, addr)]; ok {
		c := *cursor
		return &c, nil
	}
	return nil, db.ErrNotFound
}

type inMemorySubmissionsRepo struct {
	subs []*entity.Submission
}

func newInMemorySubmissionsRepo() *inMemorySubmissionsRepo {
	return &inMemorySubmissionsRepo{}
}

func cloneSubmission(sub *entity.Submission) *entity.Submission {
	c := *sub
	if sub.TxHash != nil {
		hash := *sub.TxHash
		c.TxHash = &hash
	}
	if sub.LastAttemptAt != nil {
		at := *sub.LastAttemptAt
		c.LastAttemptAt = &at
	}
	return &c
}

func (r *inMemorySubmissionsRepo) Ensure(_ context.Context, sub *entity.Submission) error {
	for i, existing := range r.subs {
		if existing.BridgeID == sub.BridgeID && existing.Direction == sub.Direction && existing.DepositHash == sub.DepositHash {
			r.subs[i] = cloneSubmission(sub)
			return nil
		}
	}
	c := cloneSubmission(sub)
	now := time.Now()
	c.CreatedAt = &now
	r.subs = append(r.subs, c)
	return nil
}

func (r *inMemorySubmissionsRepo) GetByDepositHash(_ context.Context, bridgeID string, direction entity.Direction, hash common.Hash) (*entity.Submission, error) {
	for _, sub := range r.subs {
		if sub.BridgeID == bridgeID && sub.Direction == direction && sub.DepositHash == hash {
			return cloneSubmission(sub), nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *inMemorySubmissionsRepo) FindByDepositHash(_ context.Context, bridgeID string, hash common.Hash) ([]*entity.Submission, error) {
	res := make([]*entity.Submission, 0, 2)
	for _, sub := range r.subs {
		if sub.BridgeID == bridgeID && sub.DepositHash == hash {
			res = append(res, cloneSubmission(sub))
		}
	}
	return res, nil
}

func (r *inMemorySubmissionsRepo) FindInStatus(_ context.Context, bridgeID string, direction entity.Direction, status entity.SubmissionStatus) ([]*entity.Submission, error) {
	res := make([]*entity.Submission, 0, len(r.subs))
	for _, sub := range r.subs {
		if sub.BridgeID == bridgeID && sub.Direction == direction && sub.Status == status {
			res = append(res, cloneSubmission(sub))
		}
	}
	return res, nil
}

func (r *inMemorySubmissionsRepo) FindFailed(_ context.Context, bridgeID string) ([]*entity.Submission, error) {
	res := make([]*entity.Submission, 0, len(r.subs))
	for _, sub := range r.subs {
		if sub.BridgeID == bridgeID && sub.Status == entity.SubmissionFailed {
			res = append(res, cloneSubmission(sub))
		}
	}
	return res, nil
}

func newTestSideConfig() *config.BridgeSideConfig {
	return &config.BridgeSideConfig{
		ChainName: "mainnet",
		Chain: &config.ChainConfig{
			ChainID: "1",
		},
		Address:               testContractAddr.String(),
		Account:               "0xBBB0000000000000000000000000000000000002",
		StartBlock:            100,
		RequiredConfirmations: 12,
		MaxBlockRangeSize:     1000,
		DepositTx: &config.DepositTxConfig{
			GasLimit: 100000,
			GasPrice: 1000000000,
		},
	}
}

func testGauge() prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge"})
}

func testCounter() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter"})
}
