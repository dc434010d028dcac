package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yieldRecon/internal/model"
	"yieldRecon/internal/server"
)

func runOnce(cmd *cobra.Command, args []string) error {
	return withTrigger(cmd, func(ctx context.Context, a *app, _ *zap.Logger) error {
		streams := args
		if len(streams) == 0 {
			streams = a.engine.Streams()
		}
		for _, stream := range streams {
			outcome, err := a.trigger.Run(ctx, stream, server.SourceCLI)
			if err != nil {
				return fmt.Errorf("reconcile %s: %w", stream, err)
			}
			if err := printOutcome(outcome); err != nil {
				return err
			}
		}
		return nil
	})
}

func runReplay(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetUint64("from")
	to, _ := cmd.Flags().GetUint64("to")
	return withTrigger(cmd, func(ctx context.Context, a *app, logger *zap.Logger) error {
		logger.Info("replay start", zap.String("stream", args[0]), zap.Uint64("from", from), zap.Uint64("to", to))
		outcome, err := a.trigger.Replay(ctx, args[0], server.SourceCLI, from, to)
		if err != nil {
			return fmt.Errorf("replay %s: %w", args[0], err)
		}
		return printOutcome(outcome)
	})
}

func runRetryFailed(cmd *cobra.Command, args []string) error {
	return withTrigger(cmd, func(ctx context.Context, a *app, _ *zap.Logger) error {
		outcome, err := a.trigger.RetryFailed(ctx, args[0], server.SourceCLI)
		if err != nil {
			return fmt.Errorf("retry failed %s: %w", args[0], err)
		}
		return printOutcome(outcome)
	})
}

func withTrigger(cmd *cobra.Command, fn func(ctx context.Context, a *app, logger *zap.Logger) error) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a, logger)
}

func printOutcome(outcome server.Outcome) error {
	out := struct {
		Ran      bool          `json:"ran"`
		Disabled bool          `json:"disabled,omitempty"`
		Skipped  string        `json:"skipped,omitempty"`
		Summary  model.Summary `json:"summary"`
	}{Ran: outcome.Ran, Disabled: outcome.Disabled, Summary: outcome.Summary}
	if outcome.Skip != nil {
		out.Skipped = outcome.Skip.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
