// ABOUTME: In-memory implementation of the link Store
// ABOUTME: Used by tests and as a throwaway backend for local experiments

package links

import (
	"context"
	"sync"
)

// MemoryStore implements Store with an in-process copy of the list.
// Contents are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	list []Link
	set  bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns a copy of the stored list, or ErrNotFound before the first Put.
func (s *MemoryStore) Get(ctx context.Context) ([]Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return nil, ErrNotFound
	}
	out := make([]Link, len(s.list))
	copy(out, s.list)
	return out, nil
}

// Put replaces the stored list.
func (s *MemoryStore) Put(ctx context.Context, list []Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list = make([]Link, len(list))
	copy(s.list, list)
	s.set = true
	return nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}
