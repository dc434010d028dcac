package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"yieldRecon/internal/model"
)

func TestParseChunkSize(t *testing.T) {
	cases := map[string]uint64{
		"":      DefaultChunkSize,
		"50":    50,
		" 250 ": 250,
		"0":     1,
		"-10":   1,
		"abc":   DefaultChunkSize,
		"NaN":   DefaultChunkSize,
		"12.7":  12,
		"0.5":   1,
	}
	for raw, want := range cases {
		if got := ParseChunkSize(raw); got != want {
			t.Fatalf("ParseChunkSize(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHUNK_SIZE", "garbage")
	t.Setenv("ENABLED", "false")
	t.Setenv("LOCK_TTL_MS", "45000")
	t.Setenv("DEPLOYMENT_BLOCK", "123")
	t.Setenv("RECONCILER_CONTRACT", "0x1111111111111111111111111111111111111111")
	t.Setenv("RECONCILER_RPC", "http://localhost:8545")

	cfg, err := Load("", pflag.NewFlagSet("test", pflag.ContinueOnError))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ChunkSize != DefaultChunkSize {
		t.Fatalf("chunk size = %d", cfg.ChunkSize)
	}
	if cfg.Enabled {
		t.Fatalf("expected enabled=false")
	}
	if cfg.LockTTL != 45*time.Second {
		t.Fatalf("lock ttl = %s", cfg.LockTTL)
	}
	if len(cfg.Streams) != 1 {
		t.Fatalf("expected one default stream, got %d", len(cfg.Streams))
	}
	stream := cfg.Streams[0]
	if stream.Name != DefaultStreamName || stream.DeploymentBlock != 123 {
		t.Fatalf("unexpected stream: %+v", stream)
	}
}

func TestLoadStreamsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reconciler.yaml")
	content := []byte(`
rpc: http://localhost:8545
chunk-size: 50
streams:
  - name: yield_distribution
    contract: "0x1111111111111111111111111111111111111111"
    deployment-block: 100
  - name: staking_events
    contract: "0x2222222222222222222222222222222222222222"
    deployment-block: 200
    pools: ["0x3333333333333333333333333333333333333333"]
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChunkSize != 50 {
		t.Fatalf("chunk size = %d", cfg.ChunkSize)
	}
	staking, ok := cfg.Stream("staking_events")
	if !ok {
		t.Fatalf("staking stream missing")
	}
	if staking.DeploymentBlock != 200 || len(staking.Pools) != 1 {
		t.Fatalf("unexpected staking stream: %+v", staking)
	}
	if _, ok := cfg.Stream("missing"); ok {
		t.Fatalf("unexpected stream lookup hit")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		RPCURL:        "http://localhost:8545",
		Streams:       []StreamConfig{{Name: "s", Contract: "0x1111111111111111111111111111111111111111"}},
		LockTTL:       time.Minute,
		LockBackend:   BackendRedis,
		LedgerBackend: BackendPostgres,
		CursorBackend: BackendPostgres,
		PGDSN:         "postgres://localhost/db",
		RedisAddr:     "localhost:6379",
		LedgerURL:     "http://ledger",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}

	if err := valid.ValidateServer(); !errors.Is(err, model.ErrConfig) {
		t.Fatalf("expected config error without auth token, got %v", err)
	}
	withToken := valid
	withToken.AuthToken = "secret"
	if err := withToken.ValidateServer(); err != nil {
		t.Fatalf("expected server config valid: %v", err)
	}

	broken := []func(c *Config){
		func(c *Config) { c.RPCURL = "" },
		func(c *Config) { c.Streams = nil },
		func(c *Config) { c.Streams = []StreamConfig{{Name: "s", Contract: "nope"}} },
		func(c *Config) { c.LockTTL = 0 },
		func(c *Config) { c.LockBackend = "etcd" },
		func(c *Config) { c.PGDSN = "" },
		func(c *Config) { c.LedgerURL = "" },
	}
	for i, mutate := range broken {
		cfg := valid
		cfg.Streams = append([]StreamConfig(nil), valid.Streams...)
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, model.ErrConfig) {
			t.Fatalf("case %d: expected config error, got %v", i, err)
		}
	}
}
