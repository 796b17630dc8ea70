package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStorage is an in-memory Storage for tests and local development
// without an object store. Safe for concurrent use.
type MemoryStorage struct {
	mu         sync.RWMutex
	objects    map[string]memObject
	publicBase string

	// FailPut, when set, is consulted before every Put; a non-nil return
	// fails the write. Used by tests to exercise partial-write behavior.
	FailPut func(key string) error
}

type memObject struct {
	data        []byte
	contentType string
}

// NewMemoryStorage returns an empty MemoryStorage serving URLs under publicBase.
func NewMemoryStorage(publicBase string) *MemoryStorage {
	return &MemoryStorage{
		objects:    make(map[string]memObject),
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// Put stores a copy of data under key.
func (s *MemoryStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if s.FailPut != nil {
		if err := s.FailPut(key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = memObject{data: buf, contentType: contentType}
	return nil
}

// Get returns the payload stored under key, or ErrNotFound.
func (s *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	buf := make([]byte, len(obj.data))
	copy(buf, obj.data)
	return buf, nil
}

// List returns all keys under prefix in lexical order.
func (s *MemoryStorage) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes the object at key. Deleting a missing key is a no-op.
func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// PublicURL returns the URL for the given key under the configured base.
func (s *MemoryStorage) PublicURL(key string) string {
	return s.publicBase + "/" + EncodeKey(key)
}

// ContentType reports the content type recorded for key, for tests.
func (s *MemoryStorage) ContentType(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj.contentType, ok
}
