package transfer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfsync/nfsync/internal/utils"
)

const (
	// killGrace is how long a cancelled rsync gets to clean up after SIGTERM
	// before the whole process tree is killed.
	killGrace = 3 * time.Second

	// maxStderr caps how much tool stderr is kept for error messages.
	maxStderr = 4 * 1024
)

// Rsync mirrors directories with the rsync tool in archive + delete mode, so
// the destination file set always converges to the source file set and
// re-running an unchanged pair is a no-op.
type Rsync struct {
	// Binary is the rsync executable. Overridable for tests.
	Binary string

	// Timeout bounds one mirror operation.
	Timeout time.Duration
}

func NewRsync() *Rsync {
	return &Rsync{
		Binary:  "rsync",
		Timeout: DefaultTimeout,
	}
}

// args builds the rsync argument list for one mirror operation. The trailing
// slash on the source makes rsync copy the directory's contents rather than
// the directory itself.
func (r *Rsync) args(spec Spec) []string {
	args := []string{"-avh", "--progress", "--delete"}
	for _, pattern := range spec.Excludes {
		args = append(args, "--exclude="+pattern)
	}
	args = append(args, strings.TrimSuffix(spec.Source, "/")+"/", spec.Dest)
	return args
}

// Mirror runs one rsync pass, streaming output lines to onLine as they
// arrive. The spawned process tree never outlives the call.
func (r *Rsync) Mirror(ctx context.Context, spec Spec, onLine LineFunc) (*Stats, error) {
	if !utils.DirExists(spec.Source) {
		return nil, fmt.Errorf("source does not exist: %s", spec.Source)
	}
	if err := utils.EnsureDir(filepath.Dir(spec.Dest)); err != nil {
		return nil, fmt.Errorf("create destination parent: %w", err)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.Command(r.Binary, r.args(spec)...)
	cmd.SysProcAttr = sysProcAttr()

	stderr := newCapBuffer(maxStderr)
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", r.Binary, err)
	}

	// Reap the whole process tree once the context fires. rsync forks a
	// receiver process, so killing just the parent is not enough.
	done := make(chan struct{})
	go func() {
		select {
		case <-runCtx.Done():
			killTree(cmd.Process.Pid, killGrace, done)
		case <-done:
		}
	}()

	stats := &Stats{}
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		stats.observe(line)
		if onLine != nil {
			onLine(line)
		}
	}

	waitErr := cmd.Wait()
	close(done)

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return nil, ErrTimeout
	case runCtx.Err() != nil:
		return nil, ErrCancelled
	case waitErr != nil:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("%s exited with code %d: %s", r.Binary, exitErr.ExitCode(), stderr.Excerpt())
		}
		return nil, fmt.Errorf("%s: %w", r.Binary, waitErr)
	}

	return stats, nil
}

// capBuffer keeps the first n bytes written and drops the rest.
type capBuffer struct {
	buf []byte
	max int
}

func newCapBuffer(max int) *capBuffer {
	return &capBuffer{max: max}
}

func (b *capBuffer) Write(p []byte) (int, error) {
	if room := b.max - len(b.buf); room > 0 {
		if len(p) > room {
			b.buf = append(b.buf, p[:room]...)
		} else {
			b.buf = append(b.buf, p...)
		}
	}
	return len(p), nil
}

// Excerpt returns a single-line summary of the captured stderr.
func (b *capBuffer) Excerpt() string {
	s := strings.TrimSpace(string(b.buf))
	if s == "" {
		return "no error output"
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const limit = 200
	if len(s) > limit {
		s = s[:limit]
	}
	return s
}
