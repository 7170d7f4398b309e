package data

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps one catalog in process memory. It runs the same Plan as
// PostgresStore, evaluated in Go, and is used for local runs and tests.
type MemoryStore[T Record[T]] struct {
	mu      sync.RWMutex
	schema  *Schema[T]
	records map[string]T
}

// NewMemoryStore returns an empty store for schema.
func NewMemoryStore[T Record[T]](schema *Schema[T]) *MemoryStore[T] {
	return &MemoryStore[T]{schema: schema, records: make(map[string]T)}
}

func (s *MemoryStore[T]) List(_ context.Context, p Plan[T]) ([]T, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	ordered := make([]T, len(ids))
	for i, id := range ids {
		ordered[i] = s.records[id]
	}
	s.mu.RUnlock()

	return p.Apply(ordered), nil
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return r, ErrRecordNotFound
	}
	return r, nil
}

func (s *MemoryStore[T]) Insert(_ context.Context, r T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[r.Identifier()]; ok {
		return ErrDuplicateRecord
	}
	s.records[r.Identifier()] = r
	return nil
}

func (s *MemoryStore[T]) Update(_ context.Context, r T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[r.Identifier()]; !ok {
		return ErrRecordNotFound
	}
	s.records[r.Identifier()] = r
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrRecordNotFound
	}
	delete(s.records, id)
	return nil
}
