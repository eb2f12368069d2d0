package daemon

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfsync/nfsync/internal/config"
	"github.com/nfsync/nfsync/internal/mount"
	"github.com/nfsync/nfsync/internal/secrets"
	"github.com/nfsync/nfsync/internal/syncer"
)

func newTestService(t *testing.T) (*SyncService, *config.Store) {
	store, err := config.LoadStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	return NewSyncService(store, nil), store
}

func TestRunSpecUsesEnabledPairsInOrder(t *testing.T) {
	svc, store := newTestService(t)

	localA := t.TempDir()
	localB := t.TempDir()
	localC := t.TempDir()
	_, err := store.AddPair(localA, "backup/a")
	require.NoError(t, err)
	_, err = store.AddPair(localB, "backup/b")
	require.NoError(t, err)
	_, err = store.AddPair(localC, "backup/c")
	require.NoError(t, err)
	require.NoError(t, store.SetPairEnabled(localB, false))
	require.NoError(t, store.AddExclude("*.tmp"))

	spec := svc.runSpec()

	require.Len(t, spec.Pairs, 2)
	assert.Equal(t, syncer.Pair{Local: localA, Target: "backup/a"}, spec.Pairs[0])
	assert.Equal(t, syncer.Pair{Local: localC, Target: "backup/c"}, spec.Pairs[1])
	assert.Equal(t, []string{"*.tmp"}, spec.Excludes)
	assert.Equal(t, config.DefaultMountPoint, spec.MountPoint)
}

func TestPasswordRequiresStoredValue(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.password()
	assert.ErrorIs(t, err, mount.ErrNoPassword)
}

func TestPasswordDecodesStoredValue(t *testing.T) {
	svc, store := newTestService(t)
	require.NoError(t, store.SetPassword(secrets.Encode("hunter2")))

	pw, err := svc.password()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)
}

func TestPasswordRejectsCorruptValue(t *testing.T) {
	svc, store := newTestService(t)
	require.NoError(t, store.SetPassword("not base64!!!"))

	_, err := svc.password()
	assert.ErrorIs(t, err, secrets.ErrBadEncoding)
}

func TestMountWithoutShareConfig(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Mount(context.Background())
	assert.ErrorIs(t, err, mount.ErrNotConfigured)
}

func TestStatusCountsPairs(t *testing.T) {
	svc, store := newTestService(t)

	local := t.TempDir()
	_, err := store.AddPair(local, "backup")
	require.NoError(t, err)
	require.NoError(t, store.SetPairEnabled(local, false))

	// point the share at a plain directory so the check cannot hang
	require.NoError(t, store.Update(func(c *config.Config) error {
		c.MountPoint = t.TempDir()
		return nil
	}))

	st := svc.Status(context.Background())
	assert.Equal(t, 1, st.Pairs)
	assert.Equal(t, 0, st.Enabled)
	assert.Equal(t, "idle", st.SyncState)
	assert.False(t, st.Mounted)
}

func TestRunAndWaitNotMounted(t *testing.T) {
	svc, store := newTestService(t)

	local := t.TempDir()
	_, err := store.AddPair(local, "backup")
	require.NoError(t, err)
	require.NoError(t, store.Update(func(c *config.Config) error {
		c.MountPoint = t.TempDir()
		return nil
	}))

	res, err := svc.RunAndWait(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, syncer.ErrNotMounted)
	assert.False(t, res.Success)
}
