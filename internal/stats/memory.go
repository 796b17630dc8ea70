package stats

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and local development.
// Safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]Stats
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]Stats)}
}

// Get returns the stats for userID, or the zero Stats when absent.
func (s *MemoryStore) Get(ctx context.Context, userID string) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID], nil
}

// RecordUpload merge-upserts one accepted upload for userID.
func (s *MemoryStore) RecordUpload(ctx context.Context, userID string, now int64, entry FileEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.users[userID]
	st.LastUpload = now
	st.Total++
	st.Files = append(st.Files, entry)
	s.users[userID] = st
	return nil
}

// Seed overwrites the record for userID. Test helper.
func (s *MemoryStore) Seed(userID string, st Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = st
}
