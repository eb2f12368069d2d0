// Package daemon wires the sync orchestrator to configuration, mount
// control, the run journal and the periodic triggers, and runs them as one
// long-lived process.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nfsync/nfsync/internal/config"
	"github.com/nfsync/nfsync/internal/journal"
	"github.com/nfsync/nfsync/internal/mount"
	"github.com/nfsync/nfsync/internal/secrets"
	"github.com/nfsync/nfsync/internal/syncer"
	"github.com/nfsync/nfsync/internal/transfer"
)

// SyncService glues the orchestrator to the rest of the system: it builds
// run specs from config snapshots, fans progress out to subscribers and
// records finished runs.
type SyncService struct {
	store   *config.Store
	orch    *syncer.Orchestrator
	journal *journal.Journal

	// OnEvent and OnResult fan progress out (e.g. to the websocket hub).
	// Both are invoked from the run worker goroutine. Set before Start.
	OnEvent  func(syncer.Event)
	OnResult func(syncer.Result)

	baseCtx context.Context
}

func NewSyncService(store *config.Store, jrnl *journal.Journal) *SyncService {
	s := &SyncService{
		store:   store,
		journal: jrnl,
		baseCtx: context.Background(),
	}
	s.orch = syncer.New(s, transfer.NewRsync())
	return s
}

// SetBaseContext binds run lifetimes to the daemon context, so runs
// triggered over HTTP don't die with the request.
func (s *SyncService) SetBaseContext(ctx context.Context) {
	s.baseCtx = ctx
}

// controller builds a mount controller for the current share config.
func (s *SyncService) controller() (*mount.Controller, error) {
	cfg := s.store.Snapshot()
	server, export, mountPoint, ok := cfg.ShareSpec()
	if !ok {
		return nil, mount.ErrNotConfigured
	}
	return mount.New(server, export, mountPoint), nil
}

// IsMounted implements mount.Checker against the current config snapshot.
func (s *SyncService) IsMounted(ctx context.Context) bool {
	cfg := s.store.Snapshot()
	if cfg.MountPoint == "" {
		return false
	}
	return mount.New(cfg.Server, cfg.Export, cfg.MountPoint).IsMounted(ctx)
}

// password returns the deobfuscated sudo password from config.
func (s *SyncService) password() (string, error) {
	cfg := s.store.Snapshot()
	pw, err := secrets.Decode(cfg.SudoPassword)
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", mount.ErrNoPassword
	}
	return pw, nil
}

// Mount attaches the configured share using the stored password.
func (s *SyncService) Mount(ctx context.Context) error {
	ctl, err := s.controller()
	if err != nil {
		return err
	}
	pw, err := s.password()
	if err != nil {
		return err
	}
	return ctl.Mount(ctx, pw)
}

// Unmount detaches the configured share.
func (s *SyncService) Unmount(ctx context.Context) error {
	ctl, err := s.controller()
	if err != nil {
		return err
	}
	pw, err := s.password()
	if err != nil {
		return err
	}
	return ctl.Unmount(ctx, pw)
}

// Probe checks that the server offers the configured export.
func (s *SyncService) Probe(ctx context.Context) error {
	ctl, err := s.controller()
	if err != nil {
		return err
	}
	return ctl.Probe(ctx)
}

// runSpec builds the immutable input of one run from the current config.
func (s *SyncService) runSpec() syncer.RunSpec {
	cfg := s.store.Snapshot()

	var pairs []syncer.Pair
	for _, f := range cfg.EnabledFolders() {
		pairs = append(pairs, syncer.Pair{Local: f.Local, Target: f.Target})
	}

	return syncer.RunSpec{
		Pairs:      pairs,
		Excludes:   cfg.ExcludePatterns,
		MountPoint: cfg.MountPoint,
		OnProgress: s.publish,
		OnResult:   s.recordResult,
	}
}

// RunNow starts a run in the background. ErrAlreadyRunning when one is
// active; the scheduler and watcher treat that as a skip, not a failure.
func (s *SyncService) RunNow() error {
	return s.orch.Start(s.baseCtx, s.runSpec())
}

// RunAndWait runs synchronously and returns the final summary. Used by the
// one-shot CLI path.
func (s *SyncService) RunAndWait(ctx context.Context) (syncer.Result, error) {
	spec := s.runSpec()

	results := make(chan syncer.Result, 1)
	record := spec.OnResult
	spec.OnResult = func(r syncer.Result) {
		record(r)
		results <- r
	}

	if err := s.orch.Start(ctx, spec); err != nil {
		return syncer.Result{}, err
	}
	return <-results, nil
}

// Cancel requests the active run to stop.
func (s *SyncService) Cancel() {
	s.orch.Cancel()
}

// State reports the orchestrator state for status output.
func (s *SyncService) State() syncer.State {
	return s.orch.State()
}

// Shutdown cancels any active run and waits for its result to flush.
func (s *SyncService) Shutdown() {
	s.orch.Cancel()
	s.orch.Wait()
}

func (s *SyncService) publish(ev syncer.Event) {
	if line, ok := ev.(syncer.TransferOutput); ok {
		slog.Debug("transfer", "pair", line.Index, "line", line.Line)
	}
	if s.OnEvent != nil {
		s.OnEvent(ev)
	}
}

func (s *SyncService) recordResult(res syncer.Result) {
	if s.journal != nil {
		if err := s.journal.Record(res); err != nil {
			slog.Error("journal record failed", "run", res.RunID, "error", err)
		}
	}

	if res.Success {
		if err := s.store.SetLastSync(res.FinishedAt); err != nil {
			slog.Error("persist last sync failed", "error", err)
		}
	}

	if s.OnResult != nil {
		s.OnResult(res)
	}
}

// Status is the daemon status surfaced on the control plane and CLI.
type Status struct {
	Mounted    bool   `json:"mounted"`
	MountPoint string `json:"mount_point"`
	SyncState  string `json:"sync_state"`
	Pairs      int    `json:"pairs"`
	Enabled    int    `json:"enabled_pairs"`
	AutoSync   bool   `json:"auto_sync"`
	LastSync   string `json:"last_sync,omitempty"`
}

func (s *SyncService) Status(ctx context.Context) Status {
	cfg := s.store.Snapshot()
	return Status{
		Mounted:    s.IsMounted(ctx),
		MountPoint: cfg.MountPoint,
		SyncState:  s.State().String(),
		Pairs:      len(cfg.Folders),
		Enabled:    len(cfg.EnabledFolders()),
		AutoSync:   cfg.AutoSync,
		LastSync:   cfg.LastSync,
	}
}

// ensure the service keeps satisfying the orchestrator's checker contract
var _ mount.Checker = (*SyncService)(nil)

// WaitIdle blocks until no run is active, bounded by timeout. Used by
// daemon shutdown so an in-flight rsync gets terminated and reported.
func (s *SyncService) WaitIdle(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		s.orch.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("sync run did not stop within %s", timeout)
	}
}
