package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the snapshot in process memory. Used in tests and as a
// throwaway backend for local runs.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot *Snapshot

	// FailLoad and FailSave inject errors for failure-path tests.
	FailLoad error
	FailSave error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshot: NewSnapshot()}
}

// Load returns a deep copy of the held snapshot.
func (m *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailLoad != nil {
		return nil, m.FailLoad
	}
	return m.snapshot.Clone(), nil
}

// Save replaces the held snapshot with a deep copy.
func (m *MemoryStore) Save(ctx context.Context, snapshot *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	m.snapshot = snapshot.Clone()
	return nil
}
