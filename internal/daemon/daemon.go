package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/nfsync/nfsync/internal/config"
)

const shutdownTimeout = 10 * time.Second

var ErrAlreadyStarted = errors.New("another daemon instance holds the lock")

// ControlServer is the control plane surface the daemon manages. Kept as an
// interface so the HTTP layer can depend on this package, not the reverse.
type ControlServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Daemon composes the sync service with its triggers and the control plane
// and runs them until the context is cancelled.
type Daemon struct {
	svc   *SyncService
	sched *Scheduler
	watch *Watcher
	cps   ControlServer
	lock  *flock.Flock
}

func New(store *config.Store, svc *SyncService, cps ControlServer) *Daemon {
	lockPath := filepath.Join(filepath.Dir(store.Snapshot().Path), "daemon.lock")
	return &Daemon{
		svc:   svc,
		sched: NewScheduler(svc, store),
		watch: NewWatcher(svc, store),
		cps:   cps,
		lock:  flock.New(lockPath),
	}
}

func (d *Daemon) Start(ctx context.Context) error {
	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return ErrAlreadyStarted
	}
	defer d.lock.Unlock()

	slog.Info("daemon start", "lock", d.lock.Path())
	d.svc.SetBaseContext(ctx)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := d.cps.Start(ctx); err != nil {
			return fmt.Errorf("control plane: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		return d.sched.Run(egCtx)
	})

	eg.Go(func() error {
		return d.watch.Run(egCtx)
	})

	eg.Go(func() error {
		<-egCtx.Done()
		slog.Info("shutdown signal received, stopping daemon")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return d.Stop(shutdownCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("daemon failure", "error", err)
		return err
	}

	slog.Info("daemon stopped")
	return nil
}

func (d *Daemon) Stop(ctx context.Context) error {
	d.svc.Cancel()
	if err := d.svc.WaitIdle(shutdownTimeout); err != nil {
		slog.Warn("sync run still active at shutdown", "error", err)
	}
	if err := d.cps.Stop(ctx); err != nil {
		return fmt.Errorf("stop control plane: %w", err)
	}
	return nil
}
