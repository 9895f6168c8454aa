package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/segyhp/lease-engine/internal/cache"
	"github.com/segyhp/lease-engine/internal/config"
	"github.com/segyhp/lease-engine/internal/repository"
	"github.com/segyhp/lease-engine/internal/service"
	"github.com/segyhp/lease-engine/internal/storage"
)

const cachePrefix = "lease-engine"

// App holds the shared infrastructure and services every binary runs on
type App struct {
	Config *config.Config
	Logger *slog.Logger

	DB    *sqlx.DB
	Redis *redis.Client
	Cache *cache.RedisCache
	Store repository.Store

	Leases    *service.LeaseService
	Payments  *service.PaymentService
	Documents *service.DocumentService
}

// New connects to Postgres and Redis and builds the services
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := initDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient := initRedis(cfg)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Redis only backs caching and job locks. The API keeps serving without it.
		logger.WarnContext(ctx, "redis unreachable at startup", "addr", cfg.Redis.Addr(), "error", err)
	}

	blobs, err := storage.NewFileStore(afero.NewOsFs(), cfg.Storage.Root)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	redisCache := cache.NewRedisCache(redisClient, cachePrefix)
	store := repository.NewStore(db, cfg.Database.TxRetries)

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Redis:     redisClient,
		Cache:     redisCache,
		Store:     store,
		Leases:    service.NewLeaseService(store, redisCache, cfg, logger),
		Payments:  service.NewPaymentService(store, redisCache, cfg, logger),
		Documents: service.NewDocumentService(store, blobs, cfg, logger),
	}, nil
}

func (a *App) Close() {
	if err := a.Redis.Close(); err != nil {
		a.Logger.Warn("failed to close redis client", "error", err)
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn("failed to close database", "error", err)
	}
}

func initDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
