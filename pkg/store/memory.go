package store

import (
	"context"
	"sync"
)

// MemoryStore implements Store in memory.
// Thread-safe via RWMutex.
type MemoryStore struct {
	mu     sync.RWMutex
	fields map[Field]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		fields: make(map[Field]string),
	}
}

func (s *MemoryStore) Has(ctx context.Context, f Field) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fields[f]
	return ok, nil
}

func (s *MemoryStore) Get(ctx context.Context, f Field) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.fields[f]
	if !ok {
		return "", ErrFieldAbsent
	}
	return v, nil
}

func (s *MemoryStore) Set(ctx context.Context, f Field, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[f] = v
	return nil
}

func (s *MemoryStore) Apply(ctx context.Context, batch map[Field]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for f, v := range batch {
		s.fields[f] = v
	}
	return nil
}
