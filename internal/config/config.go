package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"yieldRecon/internal/model"
)

const (
	DefaultChunkSize  = uint64(1000)
	DefaultStreamName = "yield_distribution"
	DefaultLockTTL    = 2 * time.Minute

	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendFile     = "file"
)

// StreamConfig describes one logical event stream.
type StreamConfig struct {
	Name            string   `mapstructure:"name"`
	Contract        string   `mapstructure:"contract"`
	DeploymentBlock uint64   `mapstructure:"deployment-block"`
	Pools           []string `mapstructure:"pools"`
}

// Config holds configuration values loaded from flags, env, or config file.
// It is built once at start-up and passed down explicitly.
type Config struct {
	RPCURL        string
	Streams       []StreamConfig
	ChunkSize     uint64
	Confirmations uint64
	Enabled       bool
	LockTTL       time.Duration

	LockBackend   string
	LedgerBackend string
	CursorBackend string
	CursorFile    string
	PGDSN         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthToken       string
	SchedulerHeader string
	Listen          string

	LedgerURL     string
	LedgerToken   string
	TokenDecimals int32

	ActionTimeout      time.Duration
	RPCTimeout         time.Duration
	RPCRateLimit       int
	MaxRetries         int
	RetryBackoff       time.Duration
	ApplyConcurrency   int
	ShrinkOnReject     bool
	AlertAfterAttempts int
	IdempotencyTTL     time.Duration

	NATSURL  string
	AuditLog string
	LogLevel string
	LogFile  string
}

// Load merges config file, environment variables, and flags into Config.
// Environment variables use the RECONCILER_ prefix; the operational knobs
// CHUNK_SIZE, ENABLED, LOCK_TTL_MS and DEPLOYMENT_BLOCK are also read unprefixed.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RECONCILER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"chunk-size", "enabled", "lock-ttl-ms", "deployment-block"} {
		envKey := strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if err := v.BindEnv(key, "RECONCILER_"+envKey, envKey); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetDefault("stream", DefaultStreamName)
	v.SetDefault("chunk-size", DefaultChunkSize)
	v.SetDefault("enabled", true)
	v.SetDefault("lock-ttl-ms", DefaultLockTTL.Milliseconds())
	v.SetDefault("lock-backend", BackendRedis)
	v.SetDefault("ledger-backend", BackendPostgres)
	v.SetDefault("cursor-backend", BackendPostgres)
	v.SetDefault("cursor-file", "./data/cursors.json")
	v.SetDefault("redis-addr", "localhost:6379")
	v.SetDefault("listen", ":8080")
	v.SetDefault("token-decimals", 18)
	v.SetDefault("action-timeout", 15*time.Second)
	v.SetDefault("rpc-timeout", 20*time.Second)
	v.SetDefault("rpc-rps", 10)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("apply-concurrency", 1)
	v.SetDefault("shrink-on-reject", true)
	v.SetDefault("alert-after-attempts", 5)
	v.SetDefault("idempotency-ttl", time.Duration(0))
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("reconciler")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:             v.GetString("rpc"),
		ChunkSize:          ParseChunkSize(v.GetString("chunk-size")),
		Confirmations:      v.GetUint64("confirmations"),
		Enabled:            v.GetBool("enabled"),
		LockTTL:            time.Duration(v.GetInt64("lock-ttl-ms")) * time.Millisecond,
		LockBackend:        strings.ToLower(v.GetString("lock-backend")),
		LedgerBackend:      strings.ToLower(v.GetString("ledger-backend")),
		CursorBackend:      strings.ToLower(v.GetString("cursor-backend")),
		CursorFile:         v.GetString("cursor-file"),
		PGDSN:              v.GetString("pg-dsn"),
		RedisAddr:          v.GetString("redis-addr"),
		RedisPassword:      v.GetString("redis-password"),
		RedisDB:            v.GetInt("redis-db"),
		AuthToken:          v.GetString("auth-token"),
		SchedulerHeader:    v.GetString("scheduler-header"),
		Listen:             v.GetString("listen"),
		LedgerURL:          v.GetString("ledger-url"),
		LedgerToken:        v.GetString("ledger-token"),
		TokenDecimals:      v.GetInt32("token-decimals"),
		ActionTimeout:      v.GetDuration("action-timeout"),
		RPCTimeout:         v.GetDuration("rpc-timeout"),
		RPCRateLimit:       v.GetInt("rpc-rps"),
		MaxRetries:         v.GetInt("max-retries"),
		RetryBackoff:       v.GetDuration("retry-backoff"),
		ApplyConcurrency:   v.GetInt("apply-concurrency"),
		ShrinkOnReject:     v.GetBool("shrink-on-reject"),
		AlertAfterAttempts: v.GetInt("alert-after-attempts"),
		IdempotencyTTL:     v.GetDuration("idempotency-ttl"),
		NATSURL:            v.GetString("nats-url"),
		AuditLog:           v.GetString("audit-log"),
		LogLevel:           v.GetString("log-level"),
		LogFile:            v.GetString("log-file"),
	}

	if v.IsSet("streams") {
		if err := v.UnmarshalKey("streams", &cfg.Streams); err != nil {
			return Config{}, fmt.Errorf("parse streams: %w", err)
		}
	}
	if len(cfg.Streams) == 0 && v.GetString("contract") != "" {
		cfg.Streams = []StreamConfig{{
			Name:            v.GetString("stream"),
			Contract:        v.GetString("contract"),
			DeploymentBlock: v.GetUint64("deployment-block"),
			Pools:           getStringSlice(v, "pools"),
		}}
	}
	if cfg.ApplyConcurrency < 1 {
		cfg.ApplyConcurrency = 1
	}

	return cfg, nil
}

// ParseChunkSize converts a raw CHUNK_SIZE value. Non-numeric input falls back
// to the default and values below one are clamped to one.
func ParseChunkSize(raw string) uint64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultChunkSize
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return DefaultChunkSize
		}
		if f < 1 {
			return 1
		}
		n = int64(f)
	}
	if n < 1 {
		return 1
	}
	return uint64(n)
}

// Stream returns the stream config by name.
func (c Config) Stream(name string) (StreamConfig, bool) {
	for _, s := range c.Streams {
		if s.Name == name {
			return s, true
		}
	}
	return StreamConfig{}, false
}

// Validate checks settings required by every command. Failures wrap model.ErrConfig.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("%w: rpc url is required", model.ErrConfig)
	}
	if len(c.Streams) == 0 {
		return fmt.Errorf("%w: at least one stream is required", model.ErrConfig)
	}
	seen := make(map[string]struct{}, len(c.Streams))
	for _, s := range c.Streams {
		if s.Name == "" {
			return fmt.Errorf("%w: stream name is required", model.ErrConfig)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%w: duplicate stream %s", model.ErrConfig, s.Name)
		}
		seen[s.Name] = struct{}{}
		if !common.IsHexAddress(s.Contract) {
			return fmt.Errorf("%w: invalid contract for stream %s: %q", model.ErrConfig, s.Name, s.Contract)
		}
		for _, pool := range s.Pools {
			if !common.IsHexAddress(pool) {
				return fmt.Errorf("%w: invalid pool filter for stream %s: %q", model.ErrConfig, s.Name, pool)
			}
		}
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("%w: lock ttl must be positive", model.ErrConfig)
	}
	if c.LedgerURL == "" {
		return fmt.Errorf("%w: ledger url is required", model.ErrConfig)
	}
	if err := checkBackend("lock-backend", c.LockBackend, BackendRedis, BackendPostgres); err != nil {
		return err
	}
	if err := checkBackend("ledger-backend", c.LedgerBackend, BackendPostgres, BackendRedis); err != nil {
		return err
	}
	if err := checkBackend("cursor-backend", c.CursorBackend, BackendPostgres, BackendFile); err != nil {
		return err
	}
	// Distribution records and the loan registry always live in Postgres.
	if c.PGDSN == "" {
		return fmt.Errorf("%w: pg dsn is required", model.ErrConfig)
	}
	if c.UsesBackend(BackendRedis) && c.RedisAddr == "" {
		return fmt.Errorf("%w: redis addr is required", model.ErrConfig)
	}
	if c.CursorBackend == BackendFile && c.CursorFile == "" {
		return fmt.Errorf("%w: cursor file is required", model.ErrConfig)
	}
	return nil
}

// ValidateServer additionally requires the trigger secret; the endpoint never runs unauthenticated.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.AuthToken) == "" {
		return fmt.Errorf("%w: auth token is required", model.ErrConfig)
	}
	return nil
}

// UsesBackend reports whether any of the lock, ledger or cursor stores uses name.
func (c Config) UsesBackend(name string) bool {
	return c.LockBackend == name || c.LedgerBackend == name || c.CursorBackend == name
}

func checkBackend(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported %s %q", model.ErrConfig, key, value)
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
