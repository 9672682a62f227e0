package scheduler

import (
	"context"
	"log/slog"
	"time"

	"piracy_tracker/internal/domain"
)

// Syncer defines the interface for sync operations.
type Syncer interface {
	Sync(ctx context.Context, opts domain.SyncOptions) (*domain.SyncResult, error)
}

// Scheduler runs sync on a fixed interval. Runs are serialized by
// construction: the next tick is not handled until the previous run
// returns, which is the non-reentrancy guarantee the engine relies on.
type Scheduler struct {
	syncer   Syncer
	opts     domain.SyncOptions
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(syncer Syncer, opts domain.SyncOptions, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		opts:     opts,
		interval: interval,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runSync(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runSync(ctx)
		}
	}
}

func (s *Scheduler) runSync(ctx context.Context) {
	if _, err := s.syncer.Sync(ctx, s.opts); err != nil {
		s.logger.Error("sync failed", "error", err)
	}
}
