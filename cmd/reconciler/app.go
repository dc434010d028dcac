package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"yieldRecon/internal/audit"
	"yieldRecon/internal/chain"
	"yieldRecon/internal/config"
	"yieldRecon/internal/contracts"
	"yieldRecon/internal/cursor"
	"yieldRecon/internal/idempotency"
	"yieldRecon/internal/lock"
	"yieldRecon/internal/metrics"
	"yieldRecon/internal/notify"
	"yieldRecon/internal/reconcile"
	"yieldRecon/internal/server"
	"yieldRecon/internal/storage/postgres"
	"yieldRecon/internal/transfer"
)

// app holds the wired collaborators of one process.
type app struct {
	store   *postgres.Store
	redis   redis.UniversalClient
	engine  *reconcile.Engine
	trigger *server.Trigger
	closers []func()
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}
	wired := false
	defer func() {
		if !wired {
			a.Close()
		}
	}()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	a.closers = append(a.closers, chainClient.Close)

	source := chain.NewEventSource(chainClient, chain.SourceConfig{
		Timeout:      cfg.RPCTimeout,
		RateLimit:    cfg.RPCRateLimit,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, metrics.NewRPCClient(), logger)

	decoder, err := contracts.NewDecoder()
	if err != nil {
		return nil, err
	}

	a.store, err = postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.closers = append(a.closers, a.store.Close)

	if cfg.UsesBackend(config.BackendRedis) {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = rdb
	}

	var locker lock.Locker = a.store
	if cfg.LockBackend == config.BackendRedis {
		locker = lock.NewRedisLocker(a.redis)
	}

	var ledger idempotency.Ledger = a.store
	if cfg.LedgerBackend == config.BackendRedis {
		ledger = idempotency.NewRedisLedger(a.redis, cfg.IdempotencyTTL)
	}

	var cursorBackend cursor.Backend = a.store
	if cfg.CursorBackend == config.BackendFile {
		cursorBackend = cursor.NewFileBackend(cfg.CursorFile)
	}

	streams := make([]reconcile.Stream, 0, len(cfg.Streams))
	seeds := make(map[string]uint64, len(cfg.Streams))
	for _, s := range cfg.Streams {
		pools := make([]common.Address, 0, len(s.Pools))
		for _, p := range s.Pools {
			pools = append(pools, common.HexToAddress(p))
		}
		streams = append(streams, reconcile.Stream{
			Name:     s.Name,
			Contract: common.HexToAddress(s.Contract),
			Pools:    pools,
		})
		seeds[s.Name] = s.DeploymentBlock
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.NATSURL != "" {
		nc, js, err := notify.Connect(cfg.NATSURL, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, nc.Close)
		if err := notify.EnsureStream(ctx, js); err != nil {
			return nil, err
		}
		notifier = notify.NewJetStreamNotifier(js, logger)
	}

	var sink audit.Sink = audit.Discard{}
	if cfg.AuditLog != "" {
		sink = audit.NewJsonlSink(cfg.AuditLog)
	}

	recMetrics := metrics.NewReconciler()
	a.engine, err = reconcile.NewEngine(reconcile.Config{
		ChunkSize:          cfg.ChunkSize,
		Confirmations:      cfg.Confirmations,
		ActionTimeout:      cfg.ActionTimeout,
		ApplyConcurrency:   cfg.ApplyConcurrency,
		ShrinkOnReject:     cfg.ShrinkOnReject,
		AlertAfterAttempts: cfg.AlertAfterAttempts,
	}, streams, reconcile.Deps{
		Cursor:   cursor.NewSeededStore(cursorBackend, seeds),
		Source:   source,
		Decoder:  decoder,
		Loans:    a.store,
		Ledger:   ledger,
		Records:  a.store,
		Applier:  newApplier(cfg),
		Audit:    sink,
		Notifier: notifier,
		Metrics:  recMetrics,
	}, logger)
	if err != nil {
		return nil, err
	}

	a.trigger, err = server.NewTrigger(server.TriggerConfig{
		Enabled: cfg.Enabled,
		LockTTL: cfg.LockTTL,
	}, a.engine, locker, recMetrics, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("reconciler wired",
		zap.Strings("streams", a.engine.Streams()),
		zap.String("lock_backend", cfg.LockBackend),
		zap.String("ledger_backend", cfg.LedgerBackend),
		zap.String("cursor_backend", cfg.CursorBackend),
		zap.Uint64("chunk_size", cfg.ChunkSize),
		zap.Uint64("confirmations", cfg.Confirmations),
		zap.Duration("lock_ttl", cfg.LockTTL),
		zap.Bool("enabled", cfg.Enabled),
		zap.Bool("notifications", cfg.NATSURL != ""),
	)
	wired = true
	return a, nil
}

func newApplier(cfg config.Config) *transfer.HTTPApplier {
	return transfer.NewHTTPApplier(transfer.Config{
		BaseURL:       cfg.LedgerURL,
		Token:         cfg.LedgerToken,
		TokenDecimals: cfg.TokenDecimals,
		Timeout:       cfg.ActionTimeout,
	})
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
