package cache

import (
	"context"
	"sync"
)

// InMemorySnapshotStore keeps cart snapshots in process memory.
// It is suitable for single-instance deployments and testing; contents are
// lost on restart.
type InMemorySnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemorySnapshotStore creates an empty in-memory store
func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value
func (s *InMemorySnapshotStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores a copy of value under key
func (s *InMemorySnapshotStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.mu.Lock()
	s.data[key] = stored
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored keys
func (s *InMemorySnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Ping always succeeds
func (s *InMemorySnapshotStore) Ping(context.Context) error {
	return nil
}
