package mount

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	stdin string
	name  string
	args  []string
}

// fakeRunner records invocations and plays back canned results per tool name.
type fakeRunner struct {
	calls   []call
	results map[string]fakeResult
}

type fakeResult struct {
	stdout string
	stderr string
	err    error
}

func (f *fakeRunner) run(ctx context.Context, stdin, name string, args ...string) (string, string, error) {
	f.calls = append(f.calls, call{stdin: stdin, name: name, args: args})
	res := f.results[name]
	return res.stdout, res.stderr, res.err
}

func newController(f *fakeRunner) *Controller {
	c := New("nas.local", "/export/data", "/mnt/nas")
	c.run = f.run
	return c
}

func TestIsMountedUsesMountpointTool(t *testing.T) {
	f := &fakeRunner{results: map[string]fakeResult{}}
	c := newController(f)

	assert.True(t, c.IsMounted(context.Background()))
	require.Len(t, f.calls, 1)
	assert.Equal(t, "mountpoint", f.calls[0].name)
	assert.Equal(t, []string{"-q", "/mnt/nas"}, f.calls[0].args)
}

func TestIsMountedFalseOnError(t *testing.T) {
	f := &fakeRunner{results: map[string]fakeResult{
		"mountpoint": {err: errors.New("exit status 1")},
	}}
	c := newController(f)

	assert.False(t, c.IsMounted(context.Background()))
}

func TestIsMountedFalseWithoutMountPoint(t *testing.T) {
	c := New("nas.local", "/export/data", "")
	c.run = func(ctx context.Context, stdin, name string, args ...string) (string, string, error) {
		t.Fatal("should not shell out")
		return "", "", nil
	}

	assert.False(t, c.IsMounted(context.Background()))
}

func TestProbeFindsExport(t *testing.T) {
	f := &fakeRunner{results: map[string]fakeResult{
		"showmount": {stdout: "Export list for nas.local:\n/export/data *\n"},
	}}
	c := newController(f)

	require.NoError(t, c.Probe(context.Background()))
	require.Len(t, f.calls, 1)
	assert.Equal(t, []string{"-e", "nas.local"}, f.calls[0].args)
}

func TestProbeExportMissing(t *testing.T) {
	f := &fakeRunner{results: map[string]fakeResult{
		"showmount": {stdout: "Export list for nas.local:\n/export/other *\n"},
	}}
	c := newController(f)

	err := c.Probe(context.Background())
	assert.ErrorIs(t, err, ErrExportMissing)
}

func TestProbeServerUnreachable(t *testing.T) {
	f := &fakeRunner{results: map[string]fakeResult{
		"showmount": {stderr: "clnt_create: RPC: Unable to receive", err: errors.New("exit status 1")},
	}}
	c := newController(f)

	err := c.Probe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
}

func TestProbeNotConfigured(t *testing.T) {
	c := New("", "", "/mnt/nas")
	assert.ErrorIs(t, c.Probe(context.Background()), ErrNotConfigured)
}

func TestMountFeedsPasswordOnStdin(t *testing.T) {
	f := &fakeRunner{results: map[string]fakeResult{
		"mountpoint": {err: errors.New("not mounted")},
	}}
	c := newController(f)
	c.mountPoint = t.TempDir()

	require.NoError(t, c.Mount(context.Background(), "hunter2"))

	require.Len(t, f.calls, 2)
	mountCall := f.calls[1]
	assert.Equal(t, "sudo", mountCall.name)
	assert.Equal(t, "hunter2\n", mountCall.stdin)
	assert.Equal(t, []string{"-S", "mount", "-t", "nfs", "nas.local:/export/data", c.mountPoint}, mountCall.args)
}

func TestMountAlreadyMounted(t *testing.T) {
	f := &fakeRunner{results: map[string]fakeResult{}}
	c := newController(f)

	assert.ErrorIs(t, c.Mount(context.Background(), "hunter2"), ErrAlreadyMounted)
}

func TestMountRequiresPassword(t *testing.T) {
	f := &fakeRunner{results: map[string]fakeResult{
		"mountpoint": {err: errors.New("not mounted")},
	}}
	c := newController(f)

	assert.ErrorIs(t, c.Mount(context.Background(), ""), ErrNoPassword)
}

func TestMountWrongPassword(t *testing.T) {
	f := &fakeRunner{results: map[string]fakeResult{
		"mountpoint": {err: errors.New("not mounted")},
		"sudo":       {stderr: "Sorry, try again.", err: errors.New("exit status 1")},
	}}
	c := newController(f)
	c.mountPoint = t.TempDir()

	assert.ErrorIs(t, c.Mount(context.Background(), "wrong"), ErrAuthFailed)
}

func TestUnmountWhenNotMounted(t *testing.T) {
	f := &fakeRunner{results: map[string]fakeResult{
		"mountpoint": {err: errors.New("not mounted")},
	}}
	c := newController(f)

	assert.ErrorIs(t, c.Unmount(context.Background(), "hunter2"), ErrNotMounted)
}

func TestUnmountRunsUmount(t *testing.T) {
	f := &fakeRunner{results: map[string]fakeResult{}}
	c := newController(f)

	require.NoError(t, c.Unmount(context.Background(), "hunter2"))
	require.Len(t, f.calls, 2)
	assert.Equal(t, []string{"-S", "umount", "/mnt/nas"}, f.calls[1].args)
}

func TestClassifySudoError(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		stderr string
		want   error
	}{
		{"wrong password", "", "Sorry, try again.", ErrAuthFailed},
		{"password prompt leak", "", "[sudo] password for user:", ErrAuthFailed},
		{"incorrect attempts", "", "sudo: 3 incorrect password attempts", ErrAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifySudoError(tt.stdout, tt.stderr), tt.want)
		})
	}

	err := classifySudoError("", "mount.nfs: Connection timed out")
	assert.EqualError(t, err, "mount.nfs: Connection timed out")
}
