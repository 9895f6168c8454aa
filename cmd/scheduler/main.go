package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/lease-engine/internal/app"
	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/scheduler"
	"github.com/segyhp/lease-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format).With("component", "scheduler")
	log.Info("starting lease scheduler", "timezone", cfg.Scheduler.Timezone)

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}

	// Wait for interrupt signal to gracefully shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log, a)
	stop()
	a.Close()

	if err != nil {
		log.Error("scheduler failed", "error", err)
		os.Exit(1)
	}
	log.Info("scheduler stopped")
}

// run schedules the daily sweeps and blocks until ctx is cancelled
func run(ctx context.Context, cfg *config.Config, log *slog.Logger, a *app.App) error {
	s := scheduler.New(cfg, a.Cache, log)

	// Daily: pending payments past their due date become overdue
	if err := s.Register("overdue-sweep", cfg.Scheduler.OverdueSpec, a.Payments.SweepOverdue); err != nil {
		return fmt.Errorf("failed to schedule overdue sweep: %w", err)
	}

	// Daily: active leases past their end date become expired
	if err := s.Register("lease-expiry", cfg.Scheduler.ExpirySpec, a.Leases.ExpireEndedLeases); err != nil {
		return fmt.Errorf("failed to schedule lease expiry: %w", err)
	}

	s.Start()
	log.Info("scheduler started")

	<-ctx.Done()

	log.Info("shutting down scheduler")
	<-s.Stop().Done()
	return nil
}
