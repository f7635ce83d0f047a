package resilience

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// FairQueueConfig configures the outbound fair-queue limiter.
type FairQueueConfig struct {
	// Limit is the number of releases allowed per window.
	// Default: 60
	Limit int

	// Window is the rolling window length.
	// Default: 60 seconds
	Window time.Duration
}

type waiter struct {
	ready     chan struct{}
	abandoned bool
}

// FairQueue gates outbound dependency calls behind a rolling window budget.
// Waiters are released strictly in arrival order by a single drain loop, so
// no more than Limit calls start within any rolling window and no waiter is
// starved by later arrivals.
type FairQueue struct {
	config FairQueueConfig

	mu       sync.Mutex
	queue    *list.List  // of *waiter, front = oldest
	releases []time.Time // release times still inside the window
	closed   bool

	wake chan struct{}
	done chan struct{}

	now func() time.Time
}

// NewFairQueue creates a fair queue and starts its drain loop.
// Callers must Close it when finished.
func NewFairQueue(config FairQueueConfig) *FairQueue {
	// Apply defaults
	if config.Limit <= 0 {
		config.Limit = 60
	}
	if config.Window <= 0 {
		config.Window = 60 * time.Second
	}

	q := &FairQueue{
		config: config,
		queue:  list.New(),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		now:    time.Now,
	}
	go q.drain()
	return q
}

// Acquire blocks until the caller is released in FIFO order under the
// window budget, the context is cancelled, or the queue is closed.
// A cancelled waiter does not consume budget.
func (q *FairQueue) Acquire(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	w := &waiter{ready: make(chan struct{})}
	elem := q.queue.PushBack(w)
	q.mu.Unlock()

	q.kick()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		q.mu.Lock()
		select {
		case <-w.ready:
			// Released between cancellation and lock acquisition; give the
			// budget slot back so the cancellation is free.
			if n := len(q.releases); n > 0 {
				q.releases = q.releases[:n-1]
			}
		default:
			w.abandoned = true
			q.queue.Remove(elem)
		}
		q.mu.Unlock()
		q.kick()
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	}
}

// Execute acquires a slot and then runs the operation.
func (q *FairQueue) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := q.Acquire(ctx); err != nil {
		return err
	}
	return op(ctx)
}

// Waiting returns the number of callers currently queued.
func (q *FairQueue) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.Len()
}

// Close stops the drain loop and fails all queued waiters.
func (q *FairQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.queue.Init()
	q.mu.Unlock()

	close(q.done)
}

// kick nudges the drain loop without blocking.
func (q *FairQueue) kick() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// drain is the single release loop: as long as the rolling window has
// budget it releases the oldest waiter, otherwise it sleeps until the
// oldest release ages out of the window.
func (q *FairQueue) drain() {
	for {
		q.mu.Lock()
		now := q.now()
		q.pruneLocked(now)

		var sleep time.Duration
		released := false

		if q.queue.Len() > 0 {
			if len(q.releases) < q.config.Limit {
				elem := q.queue.Front()
				q.queue.Remove(elem)
				w := elem.Value.(*waiter)
				if !w.abandoned {
					q.releases = append(q.releases, now)
					close(w.ready)
				}
				released = true
			} else {
				// Budget exhausted: wait for the oldest release to expire.
				sleep = q.config.Window - now.Sub(q.releases[0])
			}
		}
		q.mu.Unlock()

		if released {
			continue
		}

		if sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-timer.C:
			case <-q.wake:
				timer.Stop()
			case <-q.done:
				timer.Stop()
				return
			}
			continue
		}

		select {
		case <-q.wake:
		case <-q.done:
			return
		}
	}
}

func (q *FairQueue) pruneLocked(now time.Time) {
	cutoff := now.Add(-q.config.Window)
	keep := 0
	for keep < len(q.releases) && !q.releases[keep].After(cutoff) {
		keep++
	}
	q.releases = q.releases[keep:]
}
