package daemon

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nfsync/nfsync/internal/config"
	"github.com/nfsync/nfsync/internal/syncer"
)

// Scheduler drives the periodic auto-sync and the auto-mount at startup.
// Interval changes made over the control plane are picked up on the next
// tick without restarting the daemon.
type Scheduler struct {
	svc   *SyncService
	store *config.Store
}

func NewScheduler(svc *SyncService, store *config.Store) *Scheduler {
	return &Scheduler{svc: svc, store: store}
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.autoMount(ctx)

	cfg := s.store.Snapshot()
	interval := cfg.SyncInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("scheduler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)

			cur := s.store.Snapshot()
			if next := cur.SyncInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
				slog.Info("sync interval updated", "interval", interval)
			}
		}
	}
}

func (s *Scheduler) autoMount(ctx context.Context) {
	cfg := s.store.Snapshot()
	if !cfg.AutoMount {
		return
	}
	if s.svc.IsMounted(ctx) {
		return
	}

	slog.Info("auto-mounting share", "mount_point", cfg.MountPoint)
	if err := s.svc.Mount(ctx); err != nil {
		slog.Warn("auto-mount failed", "error", err)
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	cfg := s.store.Snapshot()
	if !cfg.AutoSync {
		return
	}
	if !s.svc.IsMounted(ctx) {
		slog.Debug("scheduled sync skipped, share not mounted")
		return
	}

	switch err := s.svc.RunNow(); {
	case err == nil:
		slog.Info("scheduled sync started")
	case errors.Is(err, syncer.ErrAlreadyRunning):
		slog.Debug("scheduled sync skipped, run in progress")
	default:
		slog.Warn("scheduled sync failed to start", "error", err)
	}
}
