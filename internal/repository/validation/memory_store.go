package validation

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu     sync.RWMutex
	byIdea map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byIdea: make(map[string]Record)}
}

func (s *MemoryStore) FindByIdea(_ context.Context, ideaID string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byIdea[ideaID]
	return rec, ok, nil
}

func (s *MemoryStore) Upsert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byIdea[rec.IdeaID] = rec
	return nil
}
