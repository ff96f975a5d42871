package pipeline

import (
	"sync"
	"testing"
)

func TestProjectLocksSerializeSameProject(t *testing.T) {
	locks := newProjectLocks()
	const workers = 8
	const iterations = 100

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				unlock := locks.lock("p1")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	if counter != workers*iterations {
		t.Fatalf("counter = %d, want %d", counter, workers*iterations)
	}
}

func TestProjectLocksIndependentProjects(t *testing.T) {
	locks := newProjectLocks()
	unlockA := locks.lock("a")
	defer unlockA()

	// A held lock on one project must not block another.
	done := make(chan struct{})
	go func() {
		unlockB := locks.lock("b")
		unlockB()
		close(done)
	}()
	<-done
}
