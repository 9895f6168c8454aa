package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/lease-engine/internal/cache"
	"github.com/segyhp/lease-engine/internal/config"
)

// Job runs one sweep and reports how many rows it changed
type Job func(ctx context.Context) (int, error)

// Locker hands out the distributed lock that keeps a job to one replica at a time
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (*cache.Lock, error)
}

type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	logger  *slog.Logger
	lockTTL time.Duration
}

func New(cfg *config.Config, locker Locker, logger *slog.Logger) *Scheduler {
	cronLog := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(cfg.GetSchedulerLocation()),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		locker:  locker,
		logger:  logger,
		lockTTL: cfg.Scheduler.LockTTL,
	}
}

// Register schedules job under name with a six field cron spec
func (s *Scheduler) Register(name, spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(context.Background(), name, job) }); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops new runs and returns a context that is done once running jobs finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// run executes job while holding its lock. A lock held elsewhere skips the run.
func (s *Scheduler) run(ctx context.Context, name string, job Job) {
	lock, err := s.locker.Lock(ctx, lockKey(name), s.lockTTL)
	if errors.Is(err, cache.ErrLockHeld) {
		s.logger.Info("job already running elsewhere, skipping", "job", name)
		return
	}
	if err != nil {
		s.logger.Error("failed to acquire job lock", "job", name, "error", err)
		return
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			s.logger.Warn("failed to release job lock", "job", name, "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.lockTTL)
	defer cancel()

	start := time.Now()
	changed, err := job(ctx)
	if err != nil {
		s.logger.Error("job failed", "job", name, "changed", changed, "duration", time.Since(start), "error", err)
		return
	}
	s.logger.Info("job finished", "job", name, "changed", changed, "duration", time.Since(start))
}

func lockKey(name string) string {
	return "scheduler:" + name + ":lock"
}

// cronLogger adapts slog to the cron logger interface
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
