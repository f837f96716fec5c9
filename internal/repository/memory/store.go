// Package memory holds in-process implementations of the ledger store and
// anchor registry. They back tests and single-process dev runs.
package memory

import (
	"context"
	"sync"

	"medchain/internal/domain"
	"medchain/internal/domain/repositories"
)

// Store is a map-backed KVStore
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{values: make(map[string][]byte)}
}

var _ repositories.KVStore = (*Store)(nil)

// Put stores a copy of value under key
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	s.values[key] = stored
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the value under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	value, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return nil, &domain.NotFoundError{Message: "no value for key " + key}
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Len returns the number of stored keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
