// Package syncer sequences folder mirror operations against a mounted share:
// one run at a time, pairs strictly in order, per-pair failures recorded
// without stopping the run, cancellation honored at pair boundaries and
// forwarded into the in-flight transfer.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nfsync/nfsync/internal/mount"
	"github.com/nfsync/nfsync/internal/transfer"
)

// State of the orchestrator. Terminal run states collapse back to Idle once
// the result has been delivered.
type State int32

const (
	StateIdle State = iota
	StateChecking
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateRunning:
		return "running"
	default:
		return "idle"
	}
}

// Pair is one (local, target) mirror job as seen by a run. Targets are
// relative to the mount root.
type Pair struct {
	Local  string
	Target string
}

// RunSpec is the immutable input of one run: a snapshot of the enabled
// pairs in configured order, the exclusions, and the caller's sinks.
type RunSpec struct {
	Pairs      []Pair
	Excludes   []string
	MountPoint string

	// OnProgress and OnResult are invoked from the run worker goroutine.
	// OnResult is called exactly once and is always the last delivery.
	OnProgress ProgressFunc
	OnResult   ResultFunc
}

// Orchestrator owns the single background run. Start fails fast while a run
// is active; Cancel is idempotent and safe from any goroutine.
type Orchestrator struct {
	checker  mount.Checker
	transfer transfer.Transfer

	state  atomic.Int32
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(checker mount.Checker, t transfer.Transfer) *Orchestrator {
	return &Orchestrator{
		checker:  checker,
		transfer: t,
	}
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Start begins a run over the given snapshot. It returns ErrAlreadyRunning
// while a run is active and nil once the worker has been launched; the
// outcome arrives via spec.OnResult.
func (o *Orchestrator) Start(ctx context.Context, spec RunSpec) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.State() != StateIdle {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.state.Store(int32(StateChecking))

	o.wg.Add(1)
	go o.run(runCtx, spec)
	return nil
}

// Cancel requests the active run to stop. The in-flight transfer is signalled
// through its context; no further pairs are started. No-op when idle.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
}

// Wait blocks until the active run (if any) has delivered its result.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(ctx context.Context, spec RunSpec) {
	res := Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Total:     len(spec.Pairs),
	}

	defer func() {
		res.finalize()
		if spec.OnResult != nil {
			spec.OnResult(res)
		}

		o.mu.Lock()
		if o.cancel != nil {
			o.cancel()
			o.cancel = nil
		}
		o.state.Store(int32(StateIdle))
		o.mu.Unlock()
		o.wg.Done()
	}()

	if !o.checker.IsMounted(ctx) {
		// A cancel request during the mount check also fails it; that is a
		// cancelled run, not an unmounted share.
		if ctx.Err() != nil {
			res.Cancelled = true
			o.emit(spec, RunCancelled{Completed: 0, Total: res.Total})
			return
		}
		res.Err = ErrNotMounted
		return
	}

	if len(spec.Pairs) == 0 {
		res.Err = ErrNoPairs
		return
	}

	o.state.Store(int32(StateRunning))
	slog.Info("sync run started", "run", res.RunID, "pairs", res.Total)

	for i, pair := range spec.Pairs {
		if ctx.Err() != nil {
			res.Cancelled = true
			o.emit(spec, RunCancelled{Completed: res.Completed, Total: res.Total})
			break
		}

		idx := i + 1
		o.emit(spec, PairStarted{Index: idx, Total: res.Total, Local: pair.Local, Target: pair.Target})

		dest := filepath.Join(spec.MountPoint, strings.TrimPrefix(pair.Target, "/"))
		stats, err := o.transfer.Mirror(ctx, transfer.Spec{
			Source:   pair.Local,
			Dest:     dest,
			Excludes: spec.Excludes,
		}, func(line string) {
			o.emit(spec, TransferOutput{Index: idx, Local: pair.Local, Line: line})
		})

		if err != nil && ctx.Err() != nil &&
			(errors.Is(err, transfer.ErrCancelled) || errors.Is(err, context.Canceled)) {
			// Orchestrator-initiated stop, not a content error.
			res.Cancelled = true
			o.emit(spec, RunCancelled{Completed: res.Completed, Total: res.Total})
			break
		}

		res.Completed++
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, PairError{Local: pair.Local, Message: err.Error()})
			o.emit(spec, PairFinished{Index: idx, Total: res.Total, Local: pair.Local, Target: pair.Target, Err: err.Error()})
			slog.Warn("pair failed", "run", res.RunID, "local", pair.Local, "error", err)
			continue
		}

		res.Succeeded++
		o.emit(spec, PairFinished{Index: idx, Total: res.Total, Local: pair.Local, Target: pair.Target, Stats: stats})
		slog.Info("pair synced", "run", res.RunID, "local", pair.Local, "target", pair.Target)
	}

	slog.Info("sync run finished", "run", res.RunID,
		"succeeded", res.Succeeded, "failed", res.Failed, "cancelled", res.Cancelled)
}

func (o *Orchestrator) emit(spec RunSpec, ev Event) {
	if spec.OnProgress != nil {
		spec.OnProgress(ev)
	}
}
