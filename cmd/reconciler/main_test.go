package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yieldRecon/internal/config"
)

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconciler.log")
	logger, err := newLogger("debug", path)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Debug("pass finished", zap.String("stream", "yield_distribution"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"msg":"pass finished"`) || !strings.Contains(got, `"ts":`) {
		t.Fatalf("unexpected log line: %s", got)
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := newLogger("loud", ""); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLoadConfigFromFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	addConfigFlags(cmd.Flags())
	err := cmd.ParseFlags([]string{
		"--rpc", "http://localhost:8545",
		"--contract", "0x9999999999999999999999999999999999999999",
		"--deployment-block", "1200",
		"--chunk-size", "not-a-number",
		"--lock-ttl-ms", "30000",
		"--enabled=false",
		"--log-level", "warn",
	})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if logger == nil {
		t.Fatalf("expected logger")
	}
	if cfg.ChunkSize != config.DefaultChunkSize {
		t.Fatalf("expected malformed chunk size to fall back, got %d", cfg.ChunkSize)
	}
	if cfg.Enabled {
		t.Fatalf("expected enabled=false")
	}
	if cfg.LockTTL.Milliseconds() != 30000 {
		t.Fatalf("unexpected lock ttl %s", cfg.LockTTL)
	}
	stream, ok := cfg.Stream(config.DefaultStreamName)
	if !ok || stream.DeploymentBlock != 1200 {
		t.Fatalf("unexpected stream config %+v", cfg.Streams)
	}
}
