// Package memory keeps the archive in memory for tests and dry runs.
package memory

import (
	"context"
	"sync"

	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

// ArchiveStore holds at most one archive in memory.
type ArchiveStore struct {
	mu      sync.RWMutex
	archive walkthrough.Archive
	saved   bool
	saves   int
}

// NewArchiveStore creates an empty in-memory archive store.
func NewArchiveStore() *ArchiveStore {
	return &ArchiveStore{}
}

// Load returns a copy of the stored archive.
func (s *ArchiveStore) Load(_ context.Context) (walkthrough.Archive, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return nil, false, nil
	}
	return walkthrough.Merge(s.archive), true, nil
}

// Save replaces the stored archive.
func (s *ArchiveStore) Save(_ context.Context, archive walkthrough.Archive) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive = walkthrough.Merge(archive)
	s.saved = true
	s.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (s *ArchiveStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
