// Package testutil provides in-memory collaborators for engine and server tests.
package testutil

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"yieldRecon/internal/chain"
	"yieldRecon/internal/contracts"
	"yieldRecon/internal/lock"
	"yieldRecon/internal/model"
	"yieldRecon/internal/transfer"
)

// CursorBackend is an in-memory cursor.Backend.
type CursorBackend struct {
	mu      sync.Mutex
	cursors map[string]uint64
	Err     error
	SaveErr error
	Writes  int
}

func NewCursorBackend() *CursorBackend {
	return &CursorBackend{cursors: make(map[string]uint64)}
}

func (c *CursorBackend) LoadCursor(_ context.Context, stream string) (model.Cursor, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return model.Cursor{}, false, c.Err
	}
	block, ok := c.cursors[stream]
	if !ok {
		return model.Cursor{}, false, nil
	}
	return model.Cursor{Stream: stream, LastProcessedBlock: block}, true, nil
}

func (c *CursorBackend) SaveCursor(_ context.Context, stream string, block uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	if c.SaveErr != nil {
		return c.SaveErr
	}
	c.cursors[stream] = block
	c.Writes++
	return nil
}

// Block returns the stored cursor.
func (c *CursorBackend) Block(stream string) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	block, ok := c.cursors[stream]
	return block, ok
}

// Ledger is an in-memory idempotency.Ledger.
type Ledger struct {
	mu     sync.Mutex
	marks  map[string]struct{}
	Err    error
	Clears int
}

func NewLedger() *Ledger {
	return &Ledger{marks: make(map[string]struct{})}
}

func (l *Ledger) CheckAndMark(_ context.Context, fp string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return false, l.Err
	}
	if _, ok := l.marks[fp]; ok {
		return false, nil
	}
	l.marks[fp] = struct{}{}
	return true, nil
}

func (l *Ledger) Clear(_ context.Context, fp string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	delete(l.marks, fp)
	l.Clears++
	return nil
}

// Len returns the number of marked fingerprints.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.marks)
}

// Records is an in-memory record store with the Postgres upsert semantics.
type Records struct {
	mu   sync.Mutex
	byFP map[string]model.DistributionRecord
	Err  error
	// BeginErr, when set, fails Begin for the records it returns an error for.
	BeginErr func(model.DistributionRecord) error
}

func NewRecords() *Records {
	return &Records{byFP: make(map[string]model.DistributionRecord)}
}

func (r *Records) Begin(_ context.Context, rec model.DistributionRecord) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	if r.BeginErr != nil {
		if err := r.BeginErr(rec); err != nil {
			return 0, err
		}
	}
	existing, ok := r.byFP[rec.Fingerprint]
	if ok {
		if existing.Status == model.StatusCompleted {
			return 0, model.ErrAlreadyCompleted
		}
		existing.Status = model.StatusPending
		existing.Attempts++
		existing.LastError = ""
		r.byFP[rec.Fingerprint] = existing
		return existing.Attempts, nil
	}
	rec.Status = model.StatusPending
	rec.Attempts = 1
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.byFP[rec.Fingerprint] = rec
	return 1, nil
}

func (r *Records) Complete(_ context.Context, fp, actionRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	rec, ok := r.byFP[fp]
	if !ok {
		return fmt.Errorf("no record %s", fp)
	}
	now := time.Now().UTC()
	rec.Status = model.StatusCompleted
	rec.ActionTxRef = actionRef
	rec.LastError = ""
	rec.CompletedAt = &now
	r.byFP[fp] = rec
	return nil
}

func (r *Records) Fail(_ context.Context, fp, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	rec, ok := r.byFP[fp]
	if !ok || rec.Status == model.StatusCompleted {
		return nil
	}
	rec.Status = model.StatusFailed
	rec.LastError = reason
	r.byFP[fp] = rec
	return nil
}

func (r *Records) ListFailed(_ context.Context, stream string, limit int) ([]model.DistributionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]model.DistributionRecord, 0)
	for _, rec := range r.byFP {
		if rec.Stream == stream && rec.Status == model.StatusFailed {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// All returns every record ordered by source position.
func (r *Records) All() []model.DistributionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.DistributionRecord, 0, len(r.byFP))
	for _, rec := range r.byFP {
		out = append(out, rec)
	}
	sortRecords(out)
	return out
}

func sortRecords(recs []model.DistributionRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].SourceBlockNumber != recs[j].SourceBlockNumber {
			return recs[i].SourceBlockNumber < recs[j].SourceBlockNumber
		}
		return recs[i].SourceLogIndex < recs[j].SourceLogIndex
	})
}

// Loans is an in-memory loan registry keyed by lowercase hash.
type Loans struct {
	mu     sync.Mutex
	byHash map[string]model.Loan
	Err    error
}

func NewLoans(loans ...model.Loan) *Loans {
	l := &Loans{byHash: make(map[string]model.Loan)}
	for _, loan := range loans {
		l.byHash[strings.ToLower(loan.Hash)] = loan
	}
	return l
}

func (l *Loans) ResolveLoan(_ context.Context, hash string) (model.Loan, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return model.Loan{}, false, l.Err
	}
	loan, ok := l.byHash[strings.ToLower(hash)]
	return loan, ok, nil
}

// Chain is an in-memory log source. Queries wider than MaxSpan are rejected
// the way RPC providers reject oversized ranges.
type Chain struct {
	mu       sync.Mutex
	head     uint64
	logs     []types.Log
	MaxSpan  uint64
	HeadErr  error
	LogsErr  error
	Queries  []chain.Query
	nextTxID int64
}

func NewChain(head uint64) *Chain {
	return &Chain{head: head}
}

func (c *Chain) SetHead(head uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = head
}

func (c *Chain) CurrentHead(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.HeadErr != nil {
		return 0, c.HeadErr
	}
	return c.head, nil
}

func (c *Chain) QueryLogs(_ context.Context, q chain.Query) ([]types.Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Queries = append(c.Queries, q)
	if c.LogsErr != nil {
		return nil, c.LogsErr
	}
	if c.MaxSpan > 0 && q.To-q.From+1 > c.MaxSpan {
		return nil, fmt.Errorf("%w: block range too large", model.ErrRPCRejected)
	}
	out := make([]types.Log, 0)
	for _, lg := range c.logs {
		if lg.Address != q.Contract || lg.BlockNumber < q.From || lg.BlockNumber > q.To {
			continue
		}
		if len(lg.Topics) == 0 || lg.Topics[0] != q.EventID {
			continue
		}
		if !matchesIndexed(lg, q.Indexed) {
			continue
		}
		out = append(out, lg)
	}
	return out, nil
}

// AddRepayment appends a LoanRepaid log and returns it.
func (c *Chain) AddRepayment(contract, pool common.Address, block uint64, logIndex uint, loanHash common.Hash, principal, interest int64) types.Log {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextTxID++
	lg := RepaymentLog(contract, pool, block, logIndex, loanHash, big.NewInt(principal), big.NewInt(interest))
	lg.TxHash = common.BigToHash(big.NewInt(c.nextTxID))
	c.logs = append(c.logs, lg)
	return lg
}

func matchesIndexed(lg types.Log, indexed [][]common.Hash) bool {
	for i, options := range indexed {
		if len(options) == 0 {
			continue
		}
		if len(lg.Topics) <= i+1 {
			return false
		}
		found := false
		for _, opt := range options {
			if lg.Topics[i+1] == opt {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// RepaymentLog ABI-encodes a LoanRepaid log.
func RepaymentLog(contract, pool common.Address, block uint64, logIndex uint, loanHash common.Hash, principal, interest *big.Int) types.Log {
	poolABI, err := contracts.LendingPoolABI()
	if err != nil {
		panic(err)
	}
	event := poolABI.Events[contracts.EventLoanRepaid]
	payer := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	data, err := event.Inputs.NonIndexed().Pack(payer, principal, interest)
	if err != nil {
		panic(err)
	}
	return types.Log{
		Address:     contract,
		Topics:      []common.Hash{event.ID, loanHash, contracts.PoolTopic(pool)},
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block)),
		Index:       logIndex,
	}
}

// Applier records applied effects and fails those selected by FailWhen.
// Delay holds every call outside the lock, honouring ctx.
type Applier struct {
	mu       sync.Mutex
	Applied  []transfer.Effect
	Calls    int
	Canceled int
	FailWhen func(transfer.Effect) error
	Delay    time.Duration
}

func (a *Applier) Apply(ctx context.Context, effect transfer.Effect) (transfer.Receipt, error) {
	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-ctx.Done():
			a.mu.Lock()
			a.Canceled++
			a.Calls++
			a.mu.Unlock()
			return transfer.Receipt{}, ctx.Err()
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls++
	if a.FailWhen != nil {
		if err := a.FailWhen(effect); err != nil {
			return transfer.Receipt{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return transfer.Receipt{}, err
	}
	a.Applied = append(a.Applied, effect)
	return transfer.Receipt{Reference: fmt.Sprintf("tx-%d", len(a.Applied))}, nil
}

// Count returns the number of successful applications.
func (a *Applier) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Applied)
}

// Locker is an in-process lock.Locker with manual expiry control.
type Locker struct {
	mu    sync.Mutex
	held  map[string]*lock.Lease
	Err   error
	Calls int
}

func NewLocker() *Locker {
	return &Locker{held: make(map[string]*lock.Lease)}
}

func (l *Locker) Acquire(_ context.Context, key string, ttl time.Duration) (*lock.Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls++
	if l.Err != nil {
		return nil, l.Err
	}
	if cur, ok := l.held[key]; ok && !cur.Expired() {
		return nil, nil
	}
	lease := lock.NewLease(key, ttl)
	l.held[key] = lease
	return lease, nil
}

func (l *Locker) Release(_ context.Context, lease *lock.Lease) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.held[lease.Key]; ok && cur.Owner == lease.Owner {
		delete(l.held, lease.Key)
	}
	return nil
}

// Hold takes key on behalf of another instance.
func (l *Locker) Hold(key string, ttl time.Duration) *lock.Lease {
	l.mu.Lock()
	defer l.mu.Unlock()
	lease := lock.NewLease(key, ttl)
	l.held[key] = lease
	return lease
}
