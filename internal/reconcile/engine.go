// Package reconcile advances event stream cursors and applies each matched
// repayment's yield exactly once.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"yieldRecon/internal/audit"
	"yieldRecon/internal/chain"
	"yieldRecon/internal/contracts"
	"yieldRecon/internal/cursor"
	"yieldRecon/internal/idempotency"
	"yieldRecon/internal/lock"
	"yieldRecon/internal/model"
	"yieldRecon/internal/notify"
)

const (
	defaultChunkSize     = uint64(1000)
	defaultActionTimeout = 15 * time.Second
	defaultRetryBatch    = 100
	bookkeepingTimeout   = 10 * time.Second
)

var (
	ErrUnknownStream = errors.New("unknown stream")
	ErrInvalidRange  = errors.New("invalid block range")
)

// Stream is one configured event stream.
type Stream struct {
	Name     string
	Contract common.Address
	Pools    []common.Address
}

// Config holds engine tuning knobs.
type Config struct {
	ChunkSize          uint64
	Confirmations      uint64
	ActionTimeout      time.Duration
	ApplyConcurrency   int
	ShrinkOnReject     bool
	AlertAfterAttempts int
	RetryBatch         int
}

// Deps are the engine collaborators. Audit, Notifier and Metrics are optional.
type Deps struct {
	Cursor   cursor.Store
	Source   LogSource
	Decoder  EventDecoder
	Loans    LoanRegistry
	Ledger   idempotency.Ledger
	Records  RecordStore
	Applier  Applier
	Audit    audit.Sink
	Notifier notify.Notifier
	Metrics  EngineMetrics
}

// Engine runs reconciliation passes. It holds no per-pass state, so one Engine
// serves every stream; exclusivity comes from the caller's lease.
type Engine struct {
	cfg     Config
	streams map[string]Stream
	eventID common.Hash
	deps    Deps
	logger  *zap.Logger
}

// NewEngine builds an Engine for the given streams.
func NewEngine(cfg Config, streams []Stream, deps Deps, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case deps.Cursor == nil:
		return nil, fmt.Errorf("cursor store is nil")
	case deps.Source == nil:
		return nil, fmt.Errorf("event source is nil")
	case deps.Decoder == nil:
		return nil, fmt.Errorf("decoder is nil")
	case deps.Loans == nil:
		return nil, fmt.Errorf("loan registry is nil")
	case deps.Ledger == nil:
		return nil, fmt.Errorf("idempotency ledger is nil")
	case deps.Records == nil:
		return nil, fmt.Errorf("record store is nil")
	case deps.Applier == nil:
		return nil, fmt.Errorf("applier is nil")
	}
	if deps.Audit == nil {
		deps.Audit = audit.Discard{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}

	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = defaultActionTimeout
	}
	if cfg.ApplyConcurrency < 1 {
		cfg.ApplyConcurrency = 1
	}
	if cfg.RetryBatch <= 0 {
		cfg.RetryBatch = defaultRetryBatch
	}

	eventID, err := deps.Decoder.EventID(contracts.EventLoanRepaid)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Stream, len(streams))
	for _, s := range streams {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: stream name required", model.ErrConfig)
		}
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate stream %s", model.ErrConfig, s.Name)
		}
		byName[s.Name] = s
	}

	return &Engine{
		cfg:     cfg,
		streams: byName,
		eventID: eventID,
		deps:    deps,
		logger:  logger,
	}, nil
}

// HasStream reports whether name is configured.
func (e *Engine) HasStream(name string) bool {
	_, ok := e.streams[name]
	return ok
}

// Streams returns the configured stream names in order.
func (e *Engine) Streams() []string {
	names := make([]string, 0, len(e.streams))
	for name := range e.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunOnce processes the next chunk after the stream cursor and advances the
// cursor to the end of the scanned range. Per-event action failures do not stop
// the cursor; cursor, head, log and storage failures abort the pass with the
// cursor unchanged. A nil lease disables expiry checks.
func (e *Engine) RunOnce(ctx context.Context, lease *lock.Lease, stream string) (summary model.Summary, err error) {
	started := time.Now()
	summary = model.Summary{Stream: stream, Phase: model.PhaseLockAcquired}
	defer func() {
		summary.DurationMs = time.Since(started).Milliseconds()
		if err != nil {
			summary.Phase = model.PhaseAborted
		}
		e.deps.Metrics.ObservePass(summary, err, started)
	}()

	st, err := e.stream(stream)
	if err != nil {
		return summary, err
	}
	ctx, cancel := leaseContext(ctx, lease)
	defer cancel()

	summary.Phase = model.PhaseScanning
	last, err := e.deps.Cursor.Get(ctx, stream)
	if err != nil {
		return summary, fmt.Errorf("read cursor: %w", err)
	}
	head, err := e.deps.Source.CurrentHead(ctx)
	if err != nil {
		return summary, fmt.Errorf("read head: %w", err)
	}
	safeHead := uint64(0)
	if head > e.cfg.Confirmations {
		safeHead = head - e.cfg.Confirmations
	}

	chunk, ok := NextChunk(last, safeHead, e.cfg.ChunkSize)
	if !ok {
		summary.FromBlock, summary.ToBlock = last, last
		summary.Idle = true
		summary.Phase = model.PhaseIdle
		e.logger.Debug("nothing to do",
			zap.String("stream", stream),
			zap.Uint64("cursor", last),
			zap.Uint64("head", head),
		)
		return summary, nil
	}

	e.logger.Info("reconcile chunk",
		zap.String("stream", stream),
		zap.Uint64("from", chunk.From),
		zap.Uint64("to", chunk.To),
		zap.Uint64("head", head),
	)

	covered, err := e.scanAndApply(ctx, lease, st, chunk, &summary)
	summary.FromBlock, summary.ToBlock = chunk.From, covered.To
	if err != nil {
		return summary, err
	}

	if err := checkLease(lease); err != nil {
		return summary, err
	}
	if err := e.deps.Cursor.Set(ctx, stream, covered.To); err != nil {
		return summary, fmt.Errorf("advance cursor: %w", err)
	}
	summary.Phase = model.PhaseCursorAdvanced
	e.deps.Metrics.SetCursor(stream, covered.To)

	e.logger.Info("chunk complete",
		zap.String("stream", stream),
		zap.Uint64("from", summary.FromBlock),
		zap.Uint64("to", summary.ToBlock),
		zap.Int("processed", summary.Processed),
		zap.Int("applied", summary.Applied),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// Replay reprocesses [from, to] without touching the cursor. Events already
// applied are skipped by the idempotency ledger, so replaying is safe; the
// range must not extend past the cursor.
func (e *Engine) Replay(ctx context.Context, lease *lock.Lease, stream string, from, to uint64) (summary model.Summary, err error) {
	started := time.Now()
	summary = model.Summary{Stream: stream, FromBlock: from, ToBlock: to, Phase: model.PhaseLockAcquired}
	defer func() {
		summary.DurationMs = time.Since(started).Milliseconds()
		if err != nil {
			summary.Phase = model.PhaseAborted
		}
		e.deps.Metrics.ObservePass(summary, err, started)
	}()

	st, err := e.stream(stream)
	if err != nil {
		return summary, err
	}
	ctx, cancel := leaseContext(ctx, lease)
	defer cancel()

	if err := e.checkReplayRange(ctx, stream, from, to); err != nil {
		return summary, err
	}
	if err := e.replayRange(ctx, lease, st, from, to, &summary); err != nil {
		return summary, err
	}
	summary.Phase = model.PhaseIdle
	return summary, nil
}

// RetryFailed clears the marks of FAILED records and replays their source
// blocks. The cursor is not moved.
func (e *Engine) RetryFailed(ctx context.Context, lease *lock.Lease, stream string) (summary model.Summary, err error) {
	started := time.Now()
	summary = model.Summary{Stream: stream, Phase: model.PhaseLockAcquired}
	defer func() {
		summary.DurationMs = time.Since(started).Milliseconds()
		if err != nil {
			summary.Phase = model.PhaseAborted
		}
		e.deps.Metrics.ObservePass(summary, err, started)
	}()

	st, err := e.stream(stream)
	if err != nil {
		return summary, err
	}
	ctx, cancel := leaseContext(ctx, lease)
	defer cancel()

	summary.Phase = model.PhaseScanning
	failed, err := e.deps.Records.ListFailed(ctx, stream, e.cfg.RetryBatch)
	if err != nil {
		return summary, fmt.Errorf("list failed distributions: %w", err)
	}
	if len(failed) == 0 {
		summary.Idle = true
		summary.Phase = model.PhaseIdle
		return summary, nil
	}

	blocks := make([]uint64, 0, len(failed))
	seen := make(map[uint64]struct{}, len(failed))
	for _, rec := range failed {
		// FAILED means the effect was never observed to land.
		if err := e.deps.Ledger.Clear(ctx, rec.Fingerprint); err != nil {
			return summary, fmt.Errorf("clear %s: %w", rec.Fingerprint, err)
		}
		if _, ok := seen[rec.SourceBlockNumber]; ok {
			continue
		}
		seen[rec.SourceBlockNumber] = struct{}{}
		blocks = append(blocks, rec.SourceBlockNumber)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	summary.FromBlock, summary.ToBlock = blocks[0], blocks[len(blocks)-1]

	e.logger.Info("retrying failed distributions",
		zap.String("stream", stream),
		zap.Int("records", len(failed)),
		zap.Int("blocks", len(blocks)),
	)
	for _, block := range blocks {
		if err := e.replayRange(ctx, lease, st, block, block, &summary); err != nil {
			return summary, err
		}
	}
	summary.Phase = model.PhaseIdle
	return summary, nil
}

func (e *Engine) checkReplayRange(ctx context.Context, stream string, from, to uint64) error {
	if from == 0 || to < from {
		return fmt.Errorf("%w: %d..%d", ErrInvalidRange, from, to)
	}
	last, err := e.deps.Cursor.Get(ctx, stream)
	if err != nil {
		return fmt.Errorf("read cursor: %w", err)
	}
	if to > last {
		return fmt.Errorf("%w: %d..%d extends past cursor %d", ErrInvalidRange, from, to, last)
	}
	return nil
}

func (e *Engine) replayRange(ctx context.Context, lease *lock.Lease, st Stream, from, to uint64, summary *model.Summary) error {
	pieces, err := SplitRange(from, to, e.cfg.ChunkSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}
	for _, piece := range pieces {
		it, err := NewChunkIterator(piece.From-1, piece.To, piece.Len())
		if err != nil {
			return err
		}
		// A shrunk fetch covers only part of the piece; continue after it.
		for r, ok := it.Next(); ok; r, ok = it.Next() {
			covered, err := e.scanAndApply(ctx, lease, st, r, summary)
			if err != nil {
				return err
			}
			it.Advance(covered.To)
		}
	}
	return nil
}

// scanAndApply fetches, matches and applies one range. The returned range is
// what was actually covered, which is shorter than r after a shrink.
func (e *Engine) scanAndApply(ctx context.Context, lease *lock.Lease, st Stream, r BlockRange, summary *model.Summary) (BlockRange, error) {
	summary.Phase = model.PhaseScanning
	logs, covered, err := e.fetch(ctx, st, r)
	if err != nil {
		return covered, fmt.Errorf("scan %d..%d: %w", covered.From, covered.To, err)
	}

	t := newTally(st.Name, summary, e.deps.Metrics)

	summary.Phase = model.PhaseMatching
	items, err := e.match(ctx, logs, t)
	if err != nil {
		return covered, err
	}

	summary.Phase = model.PhaseApplying
	if err := e.applyAll(ctx, lease, st, items, t); err != nil {
		return covered, err
	}
	return covered, nil
}

// fetch loads every LoanRepaid log in r before anything is processed. When the
// provider rejects the range and shrinking is enabled, the range is halved
// until it is accepted or a single block is still rejected.
func (e *Engine) fetch(ctx context.Context, st Stream, r BlockRange) ([]types.Log, BlockRange, error) {
	for {
		logs, err := e.deps.Source.QueryLogs(ctx, e.query(st, r))
		if err == nil {
			return logs, r, nil
		}
		if !e.cfg.ShrinkOnReject || !errors.Is(err, model.ErrRPCRejected) || r.Len() <= 1 {
			return nil, r, err
		}
		next := shrink(r)
		e.logger.Warn("range rejected, shrinking",
			zap.String("stream", st.Name),
			zap.Uint64("from", r.From),
			zap.Uint64("to", r.To),
			zap.Uint64("new_to", next.To),
			zap.Error(err),
		)
		r = next
	}
}

func (e *Engine) query(st Stream, r BlockRange) chain.Query {
	q := chain.Query{
		Contract: st.Contract,
		EventID:  e.eventID,
		From:     r.From,
		To:       r.To,
	}
	if len(st.Pools) > 0 {
		pools := make([]common.Hash, 0, len(st.Pools))
		for _, pool := range st.Pools {
			pools = append(pools, contracts.PoolTopic(pool))
		}
		// topic1 is the loan id (any), topic2 the pool.
		q.Indexed = [][]common.Hash{nil, pools}
	}
	return q
}

func (e *Engine) stream(name string) (Stream, error) {
	st, ok := e.streams[name]
	if !ok {
		return Stream{}, fmt.Errorf("%w: %s", ErrUnknownStream, name)
	}
	return st, nil
}

func leaseContext(ctx context.Context, lease *lock.Lease) (context.Context, context.CancelFunc) {
	if lease == nil {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, lease.ExpiresAt)
}

func checkLease(lease *lock.Lease) error {
	if lease != nil && lease.Expired() {
		return fmt.Errorf("%w: %s", model.ErrLeaseExpired, lease.Key)
	}
	return nil
}
