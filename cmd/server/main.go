package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/lease-engine/internal/app"
	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/handler"
	"github.com/segyhp/lease-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

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
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
	log.Info("server exited")
}

// run serves the API until ctx is cancelled or the listener fails
func run(ctx context.Context, cfg *config.Config, log *slog.Logger, a *app.App) error {
	router := handler.NewRouter(
		handler.NewLeaseHandler(a.Leases, cfg, log),
		handler.NewPaymentHandler(a.Payments, cfg, log),
		handler.NewDocumentHandler(a.Documents, cfg, log),
		handler.NewHealthHandler(a.DB, a.Cache, cfg.Health.Timeout),
		log,
	)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	return nil
}
