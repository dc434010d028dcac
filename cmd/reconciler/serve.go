package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"yieldRecon/internal/metrics"
	"yieldRecon/internal/server"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	health := server.NewHealthChecker()
	health.AddProbe("postgres", a.store.Ping)
	if a.redis != nil {
		health.AddProbe("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: server.NewHandler(server.HandlerConfig{
			AuthToken:       cfg.AuthToken,
			SchedulerHeader: cfg.SchedulerHeader,
		}, a.trigger, health, metrics.NewHTTP(), logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		// A pass may run for the whole lease before the response is written.
		WriteTimeout: cfg.LockTTL + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server start", zap.String("listen", cfg.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		health.SetReady(false)
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.LockTTL+10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	health.SetReady(true)

	if err := g.Wait(); err != nil {
		logger.Error("http server stopped", zap.Error(err))
		return err
	}
	logger.Info("http server stopped")
	return nil
}
