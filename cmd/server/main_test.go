package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/lease-engine/internal/app"
	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/service"
	"github.com/segyhp/lease-engine/pkg/logger"
)

func serverConfig(port string) *config.Config {
	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = port
	cfg.Business.ExpiringSoonDays = 30
	cfg.Storage.MaxUploadBytes = 1 << 20
	cfg.Health.Timeout = time.Second
	return cfg
}

func testApp() *app.App {
	return &app.App{
		Leases:    &service.LeaseService{},
		Payments:  &service.PaymentService{},
		Documents: &service.DocumentService{},
	}
}

func TestRun_ListenFailureReturnsError(t *testing.T) {
	err := run(context.Background(), serverConfig("99999"), logger.NewWithWriter(io.Discard, "error", "json"), testApp())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "99999")
}

func TestRun_ShutsDownWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, serverConfig("0"), logger.NewWithWriter(io.Discard, "error", "json"), testApp())
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
