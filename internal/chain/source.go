package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

type (
	// Backend is the subset of Client the event source needs.
	Backend interface {
		LatestBlockNumber(ctx context.Context) (uint64, error)
		FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topics [][]common.Hash) ([]types.Log, error)
	}

	// RPCMetrics records metrics for RPC calls.
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Query scopes a log lookup to one contract and event within an inclusive block range.
// Indexed holds optional filters for indexed arguments 1..3.
type Query struct {
	Contract common.Address
	EventID  common.Hash
	From     uint64
	To       uint64
	Indexed  [][]common.Hash
}

// SourceConfig configures the event source.
type SourceConfig struct {
	Timeout      time.Duration
	RateLimit    int
	MaxRetries   int
	RetryBackoff time.Duration
}

// EventSource reads the chain head and contract logs with per-call timeouts,
// rate limiting, bounded retries and classified errors.
type EventSource struct {
	backend Backend
	cfg     SourceConfig
	limiter ratelimit.Limiter
	metrics RPCMetrics
	logger  *zap.Logger
}

// NewEventSource builds an EventSource over backend.
func NewEventSource(backend Backend, cfg SourceConfig, metrics RPCMetrics, logger *zap.Logger) *EventSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := ratelimit.NewUnlimited()
	if cfg.RateLimit > 0 {
		limiter = ratelimit.New(cfg.RateLimit)
	}
	return &EventSource{
		backend: backend,
		cfg:     cfg,
		limiter: limiter,
		metrics: metrics,
		logger:  logger,
	}
}

// CurrentHead returns the latest block number.
func (s *EventSource) CurrentHead(ctx context.Context) (uint64, error) {
	var head uint64
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		head, err = s.latestBlock(ctx)
		if err != nil {
			s.logger.Warn("get head failed", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("current head: %w", err)
	}
	return head, nil
}

// QueryLogs returns the logs matching q. A rejected range is reported as
// model.ErrRPCRejected so the caller can shrink it.
func (s *EventSource) QueryLogs(ctx context.Context, q Query) ([]types.Log, error) {
	if q.To < q.From {
		return nil, fmt.Errorf("invalid range %d..%d", q.From, q.To)
	}

	topics := make([][]common.Hash, 0, 1+len(q.Indexed))
	topics = append(topics, []common.Hash{q.EventID})
	topics = append(topics, q.Indexed...)

	var logs []types.Log
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = s.filterLogs(ctx, q.From, q.To, []common.Address{q.Contract}, topics)
		if err != nil {
			s.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", q.From), zap.Uint64("to", q.To))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query logs %d..%d: %w", q.From, q.To, err)
	}
	return logs, nil
}

func (s *EventSource) latestBlock(ctx context.Context) (head uint64, err error) {
	started := time.Now()
	defer func() {
		s.observe("block_number", err, started)
	}()

	s.limiter.Take()
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	head, err = s.backend.LatestBlockNumber(callCtx)
	return head, Classify(err)
}

func (s *EventSource) filterLogs(ctx context.Context, from, to uint64, addresses []common.Address, topics [][]common.Hash) (logs []types.Log, err error) {
	started := time.Now()
	defer func() {
		s.observe("get_logs", err, started)
	}()

	s.limiter.Take()
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	logs, err = s.backend.FilterLogs(callCtx, from, to, addresses, topics)
	return logs, Classify(err)
}

func (s *EventSource) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

func (s *EventSource) observe(operation string, err error, started time.Time) {
	if s.metrics != nil {
		s.metrics.Observe(operation, err, started)
	}
}
