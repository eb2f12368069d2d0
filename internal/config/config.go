// Package config owns the persisted nfsync configuration: the NFS share
// coordinates, the configured folder pairs and the daemon settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nfsync/nfsync/internal/utils"
)

var (
	home, _            = os.UserHomeDir()
	DefaultConfigPath  = filepath.Join(home, ".config", "nfsync", "config.json")
	DefaultLogFilePath = filepath.Join(home, ".local", "state", "nfsync", "nfsync.log")
	DefaultJournalPath = filepath.Join(home, ".local", "state", "nfsync", "journal.db")
	DefaultMountPoint  = "/mnt/nas"
	DefaultControlAddr = "127.0.0.1:7437"
)

const (
	// DefaultSyncIntervalSecs is the auto-sync period when none is configured.
	DefaultSyncIntervalSecs = 3600

	// MinSyncIntervalSecs guards against hammering the share.
	MinSyncIntervalSecs = 30
)

// FolderPair is one configured mirror job: a local directory mirrored onto a
// path relative to the mount root. Disabled pairs are kept in the config but
// skipped by runs.
type FolderPair struct {
	Local   string `json:"local"`
	Target  string `json:"target"`
	Enabled bool   `json:"enabled"`
}

type Config struct {
	Server           string       `json:"nfs_server"`
	Export           string       `json:"nfs_export"`
	MountPoint       string       `json:"mount_point"`
	Folders          []FolderPair `json:"folders"`
	ExcludePatterns  []string     `json:"exclude_patterns,omitempty"`
	AutoMount        bool         `json:"auto_mount"`
	AutoSync         bool         `json:"auto_sync"`
	SyncIntervalSecs int          `json:"sync_interval"`
	LastSync         string       `json:"last_sync,omitempty"`
	ControlAddr      string       `json:"control_addr"`
	ControlToken     string       `json:"control_token,omitempty"`

	// SudoPassword is base64 obfuscated, not encrypted. Parity with the
	// desktop tool this replaced; treat the config file as sensitive.
	SudoPassword string `json:"sudo_password,omitempty"`

	Path string `json:"-"`
}

func Default() *Config {
	return &Config{
		MountPoint:       DefaultMountPoint,
		ControlAddr:      DefaultControlAddr,
		SyncIntervalSecs: DefaultSyncIntervalSecs,
		Path:             DefaultConfigPath,
	}
}

// Load reads a config file. A missing file is not an error: it yields the
// defaults with Path set, so the first Save creates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.Path = path
			return cfg, nil
		}
		return nil, fmt.Errorf("config read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config parse %s: %w", path, err)
	}

	cfg.Path = path
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MountPoint == "" {
		c.MountPoint = DefaultMountPoint
	}
	if c.ControlAddr == "" {
		c.ControlAddr = DefaultControlAddr
	}
	if c.SyncIntervalSecs <= 0 {
		c.SyncIntervalSecs = DefaultSyncIntervalSecs
	}
}

// Save persists the config. Mode 0600 because the file may carry the
// obfuscated sudo password.
func (c *Config) Save() error {
	if c.Path == "" {
		return errors.New("config path not set")
	}
	if err := utils.EnsureParent(c.Path); err != nil {
		return fmt.Errorf("config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	tmp := c.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("config write: %w", err)
	}
	return os.Rename(tmp, c.Path)
}

// ShareSpec reports whether the NFS share is fully configured.
func (c *Config) ShareSpec() (server, export, mountPoint string, ok bool) {
	if c.Server == "" || c.Export == "" || c.MountPoint == "" {
		return "", "", "", false
	}
	return c.Server, c.Export, c.MountPoint, true
}

func (c *Config) SyncInterval() time.Duration {
	secs := c.SyncIntervalSecs
	if secs < MinSyncIntervalSecs {
		secs = MinSyncIntervalSecs
	}
	return time.Duration(secs) * time.Second
}

// EnabledFolders returns the enabled pairs in configured order.
func (c *Config) EnabledFolders() []FolderPair {
	var enabled []FolderPair
	for _, f := range c.Folders {
		if f.Enabled {
			enabled = append(enabled, f)
		}
	}
	return enabled
}
