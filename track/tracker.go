package track

import (
	"sync"
	"time"
)

// InFlight describes a request currently executing.
type InFlight struct {
	ID        string
	StartedAt time.Time
}

// Tracker records the set of requests currently in the pipeline. Begin and
// End are always paired; callers defer End so it runs on every exit path.
type Tracker struct {
	mu     sync.Mutex
	active map[string]time.Time
}

// NewTracker creates a new request tracker.
func NewTracker() *Tracker {
	return &Tracker{
		active: make(map[string]time.Time),
	}
}

// Begin registers a request as in flight.
func (t *Tracker) Begin(id string) {
	t.mu.Lock()
	t.active[id] = time.Now()
	t.mu.Unlock()
}

// End removes a request. Idempotent - ending an unknown id is a no-op.
func (t *Tracker) End(id string) {
	t.mu.Lock()
	delete(t.active, id)
	t.mu.Unlock()
}

// Size returns the number of requests currently in flight.
func (t *Tracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// Active returns a snapshot of in-flight requests, oldest first.
func (t *Tracker) Active() []InFlight {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make([]InFlight, 0, len(t.active))
	for id, startedAt := range t.active {
		snapshot = append(snapshot, InFlight{ID: id, StartedAt: startedAt})
	}

	// Insertion sort; in-flight sets are small
	for i := 1; i < len(snapshot); i++ {
		for j := i; j > 0 && snapshot[j].StartedAt.Before(snapshot[j-1].StartedAt); j-- {
			snapshot[j], snapshot[j-1] = snapshot[j-1], snapshot[j]
		}
	}

	return snapshot
}
