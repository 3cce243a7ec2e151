package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/flowviz/sankey/pkg/errors"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	diagrams map[string]Diagram
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{diagrams: make(map[string]Diagram)}
}

// Put inserts or replaces a diagram.
func (s *MemoryStore) Put(ctx context.Context, d Diagram) (Diagram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if d.ID == "" {
		d.ID = NewID()
		d.CreatedAt = now
	} else if prev, ok := s.diagrams[d.ID]; ok {
		d.CreatedAt = prev.CreatedAt
	} else if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	s.diagrams[d.ID] = d
	return d, nil
}

// Get returns a stored diagram by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.diagrams[id]
	if !ok {
		return Diagram{}, errors.New(errors.ErrCodeNotFound, "diagram %q not found", id)
	}
	return d, nil
}

// List returns all diagrams, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Diagram, 0, len(s.diagrams))
	for _, d := range s.diagrams {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Diagram) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Delete removes a diagram by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.diagrams[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "diagram %q not found", id)
	}
	delete(s.diagrams, id)
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
