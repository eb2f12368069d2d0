package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "config.json")
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	path := testPath(t)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, DefaultMountPoint, cfg.MountPoint)
	assert.Equal(t, DefaultControlAddr, cfg.ControlAddr)
	assert.Equal(t, DefaultSyncIntervalSecs, cfg.SyncIntervalSecs)
	assert.Empty(t, cfg.Folders)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := testPath(t)

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Server = "nas.local"
	cfg.Export = "/export/data"
	cfg.Folders = []FolderPair{{Local: "/home/u/docs", Target: "backup/docs", Enabled: true}}
	cfg.ExcludePatterns = []string{"*.tmp"}
	require.NoError(t, cfg.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nas.local", loaded.Server)
	assert.Equal(t, cfg.Folders, loaded.Folders)
	assert.Equal(t, cfg.ExcludePatterns, loaded.ExcludePatterns)
}

func TestSaveModeRestrictsAccess(t *testing.T) {
	path := testPath(t)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadMalformedFails(t *testing.T) {
	path := testPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestShareSpec(t *testing.T) {
	cfg := Default()
	_, _, _, ok := cfg.ShareSpec()
	assert.False(t, ok)

	cfg.Server = "nas.local"
	cfg.Export = "/export/data"
	server, export, mountPoint, ok := cfg.ShareSpec()
	require.True(t, ok)
	assert.Equal(t, "nas.local", server)
	assert.Equal(t, "/export/data", export)
	assert.Equal(t, DefaultMountPoint, mountPoint)
}

func TestSyncIntervalFloor(t *testing.T) {
	cfg := Default()
	cfg.SyncIntervalSecs = 5

	assert.Equal(t, time.Duration(MinSyncIntervalSecs)*time.Second, cfg.SyncInterval())
}

func TestEnabledFoldersPreservesOrder(t *testing.T) {
	cfg := Default()
	cfg.Folders = []FolderPair{
		{Local: "/a", Target: "a", Enabled: true},
		{Local: "/b", Target: "b", Enabled: false},
		{Local: "/c", Target: "c", Enabled: true},
	}

	enabled := cfg.EnabledFolders()
	require.Len(t, enabled, 2)
	assert.Equal(t, "/a", enabled[0].Local)
	assert.Equal(t, "/c", enabled[1].Local)
}
