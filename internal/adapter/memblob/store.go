// Package memblob implements the blob port in process memory. It backs local
// development and tests; values do not survive a restart.
package memblob

import (
	"context"
	"sync"
)

// Store is a mutex-guarded map of keys to byte slices.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (s *Store) Get(_ context.Context, key string) (data []byte, found bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put replaces the value for key with a copy of data.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

// Writable always reports true; memory needs no credential.
func (s *Store) Writable() bool { return true }
