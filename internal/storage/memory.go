package storage

import (
	"context"
	"errors"
	"sync"
)

// MemStore is an in-process KV. It backs the ephemeral per-tab storage and
// substitutes for the file store in tests.
type MemStore struct {
	mu     sync.RWMutex
	values map[string][]byte

	// FailWrites makes every Set return an error. Used to exercise the
	// fail-open paths and the storage probe.
	FailWrites bool
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

var errWriteRefused = errors.New("storage: write refused")

func (s *MemStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return cp, true, nil
}

func (s *MemStore) Set(_ context.Context, key string, value []byte) error {
	if s.FailWrites {
		return errWriteRefused
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	return nil
}

func (s *MemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
