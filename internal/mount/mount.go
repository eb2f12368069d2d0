// Package mount controls the NFS share mount via the system mount tools.
// All state lives in the kernel mount table; every query shells out with a
// bounded timeout so a dead server can never hang the caller.
package mount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nfsync/nfsync/internal/utils"
)

var (
	ErrNotConfigured  = errors.New("nfs share not configured")
	ErrNotMounted     = errors.New("share is not mounted")
	ErrAlreadyMounted = errors.New("share is already mounted")
	ErrAuthFailed     = errors.New("sudo authentication failed")
	ErrNoPassword     = errors.New("sudo password required")
	ErrTimeout        = errors.New("mount operation timed out")
	ErrExportMissing  = errors.New("server reachable but export not offered")
)

const (
	checkTimeout   = 5 * time.Second
	probeTimeout   = 10 * time.Second
	mountTimeout   = 30 * time.Second
	unmountTimeout = 10 * time.Second
)

// Checker is the read-only mount-state view the sync orchestrator depends on.
type Checker interface {
	IsMounted(ctx context.Context) bool
}

// Controller mounts and unmounts one NFS export at a fixed mount point.
type Controller struct {
	server     string
	export     string
	mountPoint string

	run runner
}

func New(server, export, mountPoint string) *Controller {
	return &Controller{
		server:     server,
		export:     export,
		mountPoint: mountPoint,
		run:        execRunner,
	}
}

func (c *Controller) MountPoint() string {
	return c.mountPoint
}

// IsMounted reports whether the mount point is currently a mount. The check
// is bounded; any failure (including timeout) reads as not mounted.
func (c *Controller) IsMounted(ctx context.Context) bool {
	if c.mountPoint == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	_, _, err := c.run(ctx, "", "mountpoint", "-q", c.mountPoint)
	return err == nil
}

// Probe verifies the server is reachable and offers the configured export,
// without mounting anything.
func (c *Controller) Probe(ctx context.Context) error {
	if c.server == "" || c.export == "" {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	stdout, stderr, err := c.run(ctx, "", "showmount", "-e", c.server)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: server did not respond", ErrTimeout)
		}
		return fmt.Errorf("server not reachable: %s", firstLine(stderr, err.Error()))
	}

	if !strings.Contains(stdout, c.export) {
		return fmt.Errorf("%w: %s on %s", ErrExportMissing, c.export, c.server)
	}
	return nil
}

// Mount attaches the export at the mount point, creating it if missing.
// The sudo password is fed on stdin and never appears in the argument list.
func (c *Controller) Mount(ctx context.Context, password string) error {
	if c.server == "" || c.export == "" || c.mountPoint == "" {
		return ErrNotConfigured
	}
	if c.IsMounted(ctx) {
		return ErrAlreadyMounted
	}
	if password == "" {
		return ErrNoPassword
	}

	if err := utils.EnsureDir(c.mountPoint); err != nil {
		return fmt.Errorf("create mount point: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, mountTimeout)
	defer cancel()

	src := fmt.Sprintf("%s:%s", c.server, c.export)
	stdout, stderr, err := c.run(ctx, password+"\n", "sudo", "-S", "mount", "-t", "nfs", src, c.mountPoint)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return classifySudoError(stdout, stderr)
	}

	slog.Info("nfs mounted", "src", src, "mountpoint", c.mountPoint)
	return nil
}

// Unmount detaches the share.
func (c *Controller) Unmount(ctx context.Context, password string) error {
	if c.mountPoint == "" {
		return ErrNotConfigured
	}
	if !c.IsMounted(ctx) {
		return ErrNotMounted
	}
	if password == "" {
		return ErrNoPassword
	}

	ctx, cancel := context.WithTimeout(ctx, unmountTimeout)
	defer cancel()

	stdout, stderr, err := c.run(ctx, password+"\n", "sudo", "-S", "umount", c.mountPoint)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return classifySudoError(stdout, stderr)
	}

	slog.Info("nfs unmounted", "mountpoint", c.mountPoint)
	return nil
}

// classifySudoError maps a failed sudo invocation onto the error vocabulary.
// Sudo reports a rejected password on stderr; everything else is passed
// through as the tool's own message.
func classifySudoError(stdout, stderr string) error {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = strings.TrimSpace(stdout)
	}

	lower := strings.ToLower(msg)
	if strings.Contains(lower, "password") || strings.Contains(lower, "sorry") || strings.Contains(lower, "incorrect") {
		return ErrAuthFailed
	}
	if msg == "" {
		msg = "unknown error"
	}
	return errors.New(msg)
}

func firstLine(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
