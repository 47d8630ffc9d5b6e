// Package memory keeps saves in process memory. It backs tests and ephemeral
// sessions.
package memory

import (
	"context"
	"sync"

	"quantumassembler/pkg/domain"
)

var _ domain.SaveStore = (*Store)(nil)

// Store holds at most one save.
type Store struct {
	mu    sync.RWMutex
	state domain.SaveState
	saved bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Load returns a copy of the last save.
func (s *Store) Load(_ context.Context) (domain.SaveState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return domain.SaveState{}, false, nil
	}
	return s.state.Clone(), true, nil
}

// Save replaces the stored save with a copy of state.
func (s *Store) Save(_ context.Context, state domain.SaveState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	s.saved = true
	return nil
}

// Close implements domain.SaveStore.
func (s *Store) Close() error { return nil }
