// Package local implements a filesystem-backed archive cache.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

// DefaultFileName is the cache file created under the user's home directory.
const DefaultFileName = ".rust_walkthrough_articles"

// Config captures the parameters for the local archive store.
type Config struct {
	// Path is the cache file. Empty means DefaultPath().
	Path string `mapstructure:"path" yaml:"path"`
}

// ArchiveStore keeps the archive as one JSON document on disk.
type ArchiveStore struct {
	path string
}

// DefaultPath returns $HOME/.rust_walkthrough_articles.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

// New creates a local archive store.
func New(cfg Config) (*ArchiveStore, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return nil, fmt.Errorf("archive path %s is a directory", path)
	}
	return &ArchiveStore{path: path}, nil
}

// Path returns the cache file location.
func (s *ArchiveStore) Path() string {
	return s.path
}

// Load reads the cache file. A missing or empty file reports false.
func (s *ArchiveStore) Load(_ context.Context) (walkthrough.Archive, bool, error) {
	// #nosec G304 -- the path comes from configuration.
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read archive %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	var archive walkthrough.Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, false, fmt.Errorf("decode archive %s: %w", s.path, err)
	}
	if archive == nil {
		archive = walkthrough.Archive{}
	}
	return archive, true, nil
}

// Save overwrites the cache file with the serialized archive.
func (s *ArchiveStore) Save(_ context.Context, archive walkthrough.Archive) error {
	payload, err := json.Marshal(archive)
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create archive dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write archive %s: %w", s.path, err)
	}
	return nil
}
