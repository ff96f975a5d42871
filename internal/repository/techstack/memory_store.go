package techstack

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu        sync.RWMutex
	byProject map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byProject: make(map[string]Record)}
}

func (s *MemoryStore) FindByProject(_ context.Context, projectID string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byProject[projectID]
	return rec, ok, nil
}

func (s *MemoryStore) Upsert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byProject[rec.ProjectID] = rec
	return nil
}
