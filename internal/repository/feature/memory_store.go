package feature

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu        sync.RWMutex
	byProject map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byProject: make(map[string][]Record)}
}

func (s *MemoryStore) ListByProject(_ context.Context, projectID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.byProject[projectID]
	out := make([]Record, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *MemoryStore) ReplaceForProject(_ context.Context, projectID string, recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]Record, len(recs))
	copy(next, recs)
	s.byProject[projectID] = next
	return nil
}
