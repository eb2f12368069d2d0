package daemon

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rjeczalik/notify"

	"github.com/nfsync/nfsync/internal/config"
	"github.com/nfsync/nfsync/internal/syncer"
)

const (
	// watchDebounce collapses editor save bursts into one run.
	watchDebounce = 10 * time.Second
	// watchRefresh re-reads the pair list so folders added over the
	// control plane get picked up without a restart.
	watchRefresh = 30 * time.Second

	watchBuffer = 256
)

// Watcher triggers a sync run after local folder changes settle. It only
// fires while the share is mounted; changes made while unmounted are
// covered by the next scheduled or manual run.
type Watcher struct {
	svc   *SyncService
	store *config.Store

	watched mapset.Set[string]
	events  chan notify.EventInfo
}

func NewWatcher(svc *SyncService, store *config.Store) *Watcher {
	return &Watcher{
		svc:     svc,
		store:   store,
		watched: mapset.NewSet[string](),
		events:  make(chan notify.EventInfo, watchBuffer),
	}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.refresh()
	defer notify.Stop(w.events)

	refresh := time.NewTicker(watchRefresh)
	defer refresh.Stop()

	// debounce starts disarmed
	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	slog.Info("watcher started", "folders", w.watched.Cardinality())

	for {
		select {
		case <-ctx.Done():
			slog.Info("watcher stopped")
			return nil

		case ev := <-w.events:
			slog.Debug("fs event", "path", ev.Path(), "op", ev.Event())
			debounce.Reset(watchDebounce)

		case <-refresh.C:
			w.refresh()

		case <-debounce.C:
			w.trigger(ctx)
		}
	}
}

// refresh reconciles the recursive watches with the enabled pair list.
func (w *Watcher) refresh() {
	want := mapset.NewSet[string]()
	cfg := w.store.Snapshot()
	for _, f := range cfg.EnabledFolders() {
		want.Add(f.Local)
	}

	if w.watched.Difference(want).Cardinality() > 0 {
		// notify.Stop drops every watch on the channel; rebuild from scratch.
		notify.Stop(w.events)
		w.watched = mapset.NewSet[string]()
	}

	for _, local := range want.Difference(w.watched).ToSlice() {
		if err := notify.Watch(filepath.Join(local, "..."), w.events, notify.All); err != nil {
			slog.Warn("watch failed", "local", local, "error", err)
			continue
		}
		w.watched.Add(local)
	}
}

func (w *Watcher) trigger(ctx context.Context) {
	if !w.store.Snapshot().AutoSync {
		return
	}
	if !w.svc.IsMounted(ctx) {
		slog.Debug("change-triggered sync skipped, share not mounted")
		return
	}

	switch err := w.svc.RunNow(); {
	case err == nil:
		slog.Info("change-triggered sync started")
	case errors.Is(err, syncer.ErrAlreadyRunning):
		slog.Debug("change-triggered sync skipped, run in progress")
	default:
		slog.Warn("change-triggered sync failed to start", "error", err)
	}
}
