package pipeline

import "sync"

// projectLocks serializes runs per project id. The four persistence writes
// are not one transaction, so concurrent same-project runs could otherwise
// interleave partial plans.
type projectLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newProjectLocks() *projectLocks {
	return &projectLocks{m: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for projectID and returns its unlock func.
func (l *projectLocks) lock(projectID string) func() {
	l.mu.Lock()
	pm, ok := l.m[projectID]
	if !ok {
		pm = &sync.Mutex{}
		l.m[projectID] = pm
	}
	l.mu.Unlock()

	pm.Lock()
	return pm.Unlock
}
