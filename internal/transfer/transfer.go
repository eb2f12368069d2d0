// Package transfer mirrors one local directory tree onto a destination path
// by driving an external copy tool. The tool's exit status is the only source
// of truth for success; its output lines are forwarded verbatim as display
// hints.
package transfer

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCancelled is returned when the caller stopped an in-flight mirror.
	ErrCancelled = errors.New("transfer cancelled")

	// ErrTimeout is returned when a mirror exceeded its deadline.
	ErrTimeout = errors.New("transfer timed out")
)

// DefaultTimeout bounds one mirror operation. A hung remote mount otherwise
// blocks the whole run.
const DefaultTimeout = 5 * time.Minute

// Spec describes one mirror operation.
type Spec struct {
	// Source is the absolute local directory to mirror from.
	Source string

	// Dest is the absolute destination directory. Created if missing.
	Dest string

	// Excludes are shell-glob patterns matched against path components.
	Excludes []string
}

// LineFunc receives each output line as the tool produces it.
type LineFunc func(line string)

// Transfer mirrors Spec.Source onto Spec.Dest, deletions included. It must
// honor ctx cancellation promptly and must not leave the spawned tool
// running on any exit path.
type Transfer interface {
	Mirror(ctx context.Context, spec Spec, onLine LineFunc) (*Stats, error)
}
