package transfer

import (
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// killTree terminates pid and all of its descendants: SIGTERM bottom-up,
// a grace period, then SIGKILL for whatever survived. done is closed by the
// caller when the root process has been reaped.
func killTree(pid int, grace time.Duration, done <-chan struct{}) {
	root, err := process.NewProcess(int32(pid))
	if err != nil {
		return // already gone
	}

	descendants, err := processTreeBottomUp(root)
	if err != nil {
		descendants = []*process.Process{root}
	}

	slog.Debug("kill process tree: SIGTERM", "pid", pid, "procs", len(descendants))
	for _, p := range descendants {
		if err := p.Terminate(); err != nil {
			slog.Debug("kill process tree: SIGTERM", "pid", p.Pid, "err", err)
		}
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		return
	case <-timer.C:
	}

	slog.Debug("kill process tree: SIGKILL", "pid", pid, "procs", len(descendants))
	for _, p := range descendants {
		exists, err := process.PidExists(p.Pid)
		if err != nil || !exists {
			continue
		}
		if err := p.Kill(); err != nil {
			slog.Warn("kill process tree: SIGKILL", "pid", p.Pid, "err", err)
		}
	}
}

// processTreeBottomUp flattens the process tree rooted at proc, children
// before parents, so signals reach leaves first.
func processTreeBottomUp(proc *process.Process) ([]*process.Process, error) {
	var tree []*process.Process
	children, err := proc.Children()
	if err != nil && len(children) == 0 {
		return []*process.Process{proc}, nil
	}

	for _, child := range children {
		// errors in a subtree are ignored so the rest still gets signalled
		subtree, _ := processTreeBottomUp(child)
		tree = append(tree, subtree...)
	}

	tree = append(tree, proc)
	return tree, nil
}
