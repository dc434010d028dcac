package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"yieldRecon/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "reconciler",
		Short:        "On-chain repayment reconciliation and yield distribution",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	addConfigFlags(root.PersistentFlags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduler trigger endpoint",
		RunE:  runServe,
	}
	root.AddCommand(serveCmd)

	runCmd := &cobra.Command{
		Use:   "run [stream...]",
		Short: "Run one reconciliation pass per stream (all configured streams by default)",
		RunE:  runOnce,
	}
	root.AddCommand(runCmd)

	replayCmd := &cobra.Command{
		Use:   "replay <stream>",
		Short: "Reprocess a historical block range without moving the cursor",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}
	replayCmd.Flags().Uint64("from", 0, "first block (inclusive)")
	replayCmd.Flags().Uint64("to", 0, "last block (inclusive)")
	_ = replayCmd.MarkFlagRequired("from")
	_ = replayCmd.MarkFlagRequired("to")
	root.AddCommand(replayCmd)

	retryCmd := &cobra.Command{
		Use:   "retry-failed <stream>",
		Short: "Retry FAILED distributions of a stream",
		Args:  cobra.ExactArgs(1),
		RunE:  runRetryFailed,
	}
	root.AddCommand(retryCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE:  runMigrate,
	}
	root.AddCommand(migrateCmd)

	loansCmd := &cobra.Command{
		Use:   "loans",
		Short: "Manage the loan registry",
	}
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upsert loans from a JSON array file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportLoans,
	}
	loansCmd.AddCommand(importCmd)
	root.AddCommand(loansCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "EVM JSON-RPC URL")
	flags.String("stream", config.DefaultStreamName, "stream name for the single-stream flags")
	flags.String("contract", "", "lending pool contract address")
	flags.Uint64("deployment-block", 0, "cursor seed for a stream never processed")
	flags.StringSlice("pools", nil, "optional pool address filter (comma-separated)")
	flags.String("chunk-size", "1000", "maximum blocks per pass")
	flags.Uint64("confirmations", 0, "blocks to stay behind the head")
	flags.Bool("enabled", true, "run passes; false turns triggers into no-ops")
	flags.Int64("lock-ttl-ms", config.DefaultLockTTL.Milliseconds(), "pass lock TTL in milliseconds")

	flags.String("lock-backend", config.BackendRedis, "lock backend (redis, postgres)")
	flags.String("ledger-backend", config.BackendPostgres, "idempotency ledger backend (postgres, redis)")
	flags.String("cursor-backend", config.BackendPostgres, "cursor backend (postgres, file)")
	flags.String("cursor-file", "./data/cursors.json", "cursor file for the file backend")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.String("redis-addr", "localhost:6379", "Redis address")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database")
	flags.Duration("idempotency-ttl", 0, "Redis idempotency mark retention, 0 keeps marks forever")

	flags.String("auth-token", "", "bearer secret for the trigger endpoint")
	flags.String("scheduler-header", "", "header that marks scheduler triggers")
	flags.String("listen", ":8080", "HTTP listen address")

	flags.String("ledger-url", "", "ledger service base URL")
	flags.String("ledger-token", "", "ledger service bearer token")
	flags.Int32("token-decimals", 18, "decimals of the distributed token")
	flags.Duration("action-timeout", 15*time.Second, "timeout per ledger transfer")

	flags.Duration("rpc-timeout", 20*time.Second, "timeout per RPC call")
	flags.Int("rpc-rps", 10, "RPC requests per second, 0 disables limiting")
	flags.Int("max-retries", 3, "maximum retry attempts for transient RPC errors")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.Bool("shrink-on-reject", true, "halve the block range when the provider rejects it")

	flags.Int("apply-concurrency", 1, "loans applied in parallel")
	flags.Int("alert-after-attempts", 5, "alert when a distribution fails this many times")

	flags.String("nats-url", "", "NATS URL for distribution notifications")
	flags.String("audit-log", "", "JSONL audit file for finalized distributions")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write logs to this file, rotated")
}

func loadConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level, file string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil || file == "" {
		return logger, err
	}

	rotated := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), rotated, cfg.Level)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})), nil
}
