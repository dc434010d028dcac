// Package server exposes reconciliation passes to schedulers and operators.
package server

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"yieldRecon/internal/lock"
	"yieldRecon/internal/model"
	"yieldRecon/internal/reconcile"
)

// Trigger sources.
const (
	SourceScheduler = "scheduler"
	SourceManual    = "manual"
	SourceCLI       = "cli"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Runner interface {
		HasStream(name string) bool
		RunOnce(ctx context.Context, lease *lock.Lease, stream string) (model.Summary, error)
		Replay(ctx context.Context, lease *lock.Lease, stream string, from, to uint64) (model.Summary, error)
		RetryFailed(ctx context.Context, lease *lock.Lease, stream string) (model.Summary, error)
	}
	TriggerMetrics interface {
		ObserveTrigger(stream, source string, acquired bool, err error)
	}
)

// Outcome is the result of one trigger.
type Outcome struct {
	// Ran is false when the trigger was disabled or another instance held the lock.
	Ran      bool
	Disabled bool
	// Skip is model.ErrLockUnavailable when another instance held the lock.
	Skip     error
	Summary  model.Summary
}

// TriggerConfig configures a Trigger.
type TriggerConfig struct {
	Enabled bool
	LockTTL time.Duration
}

// Trigger runs engine passes under the per-stream distributed lock.
type Trigger struct {
	cfg     TriggerConfig
	runner  Runner
	locker  lock.Locker
	metrics TriggerMetrics
	logger  *zap.Logger
}

// NewTrigger builds a Trigger. metrics may be nil.
func NewTrigger(cfg TriggerConfig, runner Runner, locker lock.Locker, metrics TriggerMetrics, logger *zap.Logger) (*Trigger, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner is nil")
	}
	if locker == nil {
		return nil, fmt.Errorf("locker is nil")
	}
	if err := lock.CheckTTL(cfg.LockTTL); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Trigger{cfg: cfg, runner: runner, locker: locker, metrics: metrics, logger: logger}, nil
}

// LockKey returns the lock key guarding stream.
func LockKey(stream string) string {
	return "reconcile:" + stream
}

// Run executes one RunOnce pass for stream.
func (t *Trigger) Run(ctx context.Context, stream, source string) (Outcome, error) {
	return t.exclusive(ctx, stream, source, "run", func(ctx context.Context) (model.Summary, error) {
		return t.runner.RunOnce(ctx, lock.FromContext(ctx), stream)
	})
}

// Replay reprocesses [from, to] for stream.
func (t *Trigger) Replay(ctx context.Context, stream, source string, from, to uint64) (Outcome, error) {
	return t.exclusive(ctx, stream, source, "replay", func(ctx context.Context) (model.Summary, error) {
		return t.runner.Replay(ctx, lock.FromContext(ctx), stream, from, to)
	})
}

// RetryFailed retries the FAILED distributions of stream.
func (t *Trigger) RetryFailed(ctx context.Context, stream, source string) (Outcome, error) {
	return t.exclusive(ctx, stream, source, "retry_failed", func(ctx context.Context) (model.Summary, error) {
		return t.runner.RetryFailed(ctx, lock.FromContext(ctx), stream)
	})
}

// Replay and retry share the pass lock: they write the same records and marks.
func (t *Trigger) exclusive(ctx context.Context, stream, source, op string, fn func(context.Context) (model.Summary, error)) (Outcome, error) {
	if !t.cfg.Enabled {
		t.logger.Info("reconciliation disabled", zap.String("stream", stream), zap.String("op", op))
		return Outcome{Disabled: true, Summary: model.Summary{Stream: stream, Phase: model.PhaseIdle}}, nil
	}
	if !t.runner.HasStream(stream) {
		return Outcome{}, fmt.Errorf("%w: %s", reconcile.ErrUnknownStream, stream)
	}

	res, err := lock.RunExclusive(ctx, t.locker, LockKey(stream), t.cfg.LockTTL, fn)
	t.metrics.ObserveTrigger(stream, source, res.Acquired, err)
	if err != nil {
		return Outcome{Ran: res.Acquired, Summary: res.Value}, err
	}
	if !res.Acquired {
		t.logger.Info("lock held elsewhere, skipping",
			zap.String("stream", stream),
			zap.String("op", op),
			zap.String("source", source),
		)
		return Outcome{
			Skip:    fmt.Errorf("%w: %s", model.ErrLockUnavailable, LockKey(stream)),
			Summary: model.Summary{Stream: stream, Phase: model.PhaseLockNotAcquired},
		}, nil
	}
	return Outcome{Ran: true, Summary: res.Value}, nil
}

type nopMetrics struct{}

func (nopMetrics) ObserveTrigger(string, string, bool, error) {}
