package config

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/nfsync/nfsync/internal/utils"
)

var (
	ErrPairExists      = errors.New("folder pair already configured for this local path")
	ErrPairNotFound    = errors.New("folder pair not found")
	ErrLocalMissing    = errors.New("local directory does not exist")
	ErrBadPattern      = errors.New("invalid exclude pattern")
	ErrExcludeNotFound = errors.New("exclude pattern not configured")
)

// Store serializes config mutations and persists every change. Runs consume
// immutable snapshots; concurrent edits never touch a snapshot already taken.
type Store struct {
	mu  sync.Mutex
	cfg *Config
}

func NewStore(cfg *Config) *Store {
	return &Store{cfg: cfg}
}

// LoadStore reads the config at path into a new store.
func LoadStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStore(cfg), nil
}

// Snapshot returns a deep copy safe to read outside the store lock.
func (s *Store) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *s.cfg
	cp.Folders = append([]FolderPair(nil), s.cfg.Folders...)
	cp.ExcludePatterns = append([]string(nil), s.cfg.ExcludePatterns...)
	return cp
}

// Update applies fn under the store lock and persists the result.
func (s *Store) Update(fn func(*Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.cfg); err != nil {
		return err
	}
	return s.cfg.Save()
}

// AddPair registers a new folder pair. The local path is resolved and must
// exist; locals are unique within the configured set.
func (s *Store) AddPair(local, target string) (FolderPair, error) {
	resolved, err := utils.ResolvePath(local)
	if err != nil {
		return FolderPair{}, fmt.Errorf("resolve %q: %w", local, err)
	}
	if !utils.DirExists(resolved) {
		return FolderPair{}, fmt.Errorf("%w: %s", ErrLocalMissing, resolved)
	}

	target = path.Clean("/" + strings.ReplaceAll(target, "\\", "/"))
	target = strings.TrimPrefix(target, "/")
	if target == "" || target == "." {
		return FolderPair{}, errors.New("target path cannot be empty")
	}

	pair := FolderPair{Local: resolved, Target: target, Enabled: true}

	err = s.Update(func(c *Config) error {
		locals := mapset.NewThreadUnsafeSet[string]()
		for _, f := range c.Folders {
			locals.Add(f.Local)
		}
		if locals.Contains(resolved) {
			return fmt.Errorf("%w: %s", ErrPairExists, resolved)
		}
		c.Folders = append(c.Folders, pair)
		return nil
	})
	if err != nil {
		return FolderPair{}, err
	}
	return pair, nil
}

// RemovePair deletes the pair with the given local path.
func (s *Store) RemovePair(local string) error {
	resolved, err := utils.ResolvePath(local)
	if err != nil {
		return err
	}

	return s.Update(func(c *Config) error {
		for i, f := range c.Folders {
			if f.Local == resolved {
				c.Folders = append(c.Folders[:i], c.Folders[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrPairNotFound, resolved)
	})
}

// SetPairEnabled toggles a pair without removing it from the config.
func (s *Store) SetPairEnabled(local string, enabled bool) error {
	resolved, err := utils.ResolvePath(local)
	if err != nil {
		return err
	}

	return s.Update(func(c *Config) error {
		for i := range c.Folders {
			if c.Folders[i].Local == resolved {
				c.Folders[i].Enabled = enabled
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrPairNotFound, resolved)
	})
}

// AddExclude registers a shell-glob exclusion pattern.
func (s *Store) AddExclude(pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}

	return s.Update(func(c *Config) error {
		for _, p := range c.ExcludePatterns {
			if p == pattern {
				return nil // already present
			}
		}
		c.ExcludePatterns = append(c.ExcludePatterns, pattern)
		return nil
	})
}

// RemoveExclude drops an exclusion pattern.
func (s *Store) RemoveExclude(pattern string) error {
	return s.Update(func(c *Config) error {
		for i, p := range c.ExcludePatterns {
			if p == pattern {
				c.ExcludePatterns = append(c.ExcludePatterns[:i], c.ExcludePatterns[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %q", ErrExcludeNotFound, pattern)
	})
}

// SetLastSync records the completion time of the last fully successful run.
func (s *Store) SetLastSync(t time.Time) error {
	return s.Update(func(c *Config) error {
		c.LastSync = t.UTC().Format(time.RFC3339)
		return nil
	})
}

// SetPassword stores the already-obfuscated sudo password.
func (s *Store) SetPassword(encoded string) error {
	return s.Update(func(c *Config) error {
		c.SudoPassword = encoded
		return nil
	})
}

// ClearPassword removes the stored sudo password.
func (s *Store) ClearPassword() error {
	return s.Update(func(c *Config) error {
		c.SudoPassword = ""
		return nil
	})
}
