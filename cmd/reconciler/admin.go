package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yieldRecon/internal/model"
	"yieldRecon/internal/storage/postgres"
)

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("%w: pg dsn is required", model.ErrConfig)
	}
	return postgres.Migrate(cfg.PGDSN, logger)
}

func runImportLoans(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("%w: pg dsn is required", model.ErrConfig)
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read loans: %w", err)
	}
	var loans []model.Loan
	if err := json.Unmarshal(raw, &loans); err != nil {
		return fmt.Errorf("parse loans: %w", err)
	}
	for i, loan := range loans {
		if loan.ID == "" || loan.PoolID == "" || !strings.HasPrefix(strings.ToLower(loan.Hash), "0x") {
			return fmt.Errorf("loan %d: id, pool_id and a 0x hash are required", i)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if err := store.UpsertLoans(ctx, loans); err != nil {
		return err
	}
	logger.Info("loans imported", zap.Int("count", len(loans)), zap.String("file", args[0]))
	return nil
}
