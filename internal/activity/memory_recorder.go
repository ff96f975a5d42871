package activity

import (
	"context"
	"sync"
)

// MemoryRecorder keeps events in memory for tests and redis-less deployments.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []RunEvent
}

func NewMemoryRecorder() *MemoryRecorder { return &MemoryRecorder{} }

func (r *MemoryRecorder) RecordRun(_ context.Context, ev RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, stamp(ev))
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *MemoryRecorder) Events() []RunEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RunEvent, len(r.events))
	copy(out, r.events)
	return out
}
