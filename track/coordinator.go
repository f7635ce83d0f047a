package track

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/openjuris/lexgate/observe"
)

// ErrDeadlineExceeded is returned by Run when the shutdown deadline elapsed
// before every hook completed.
var ErrDeadlineExceeded = errors.New("track: shutdown deadline exceeded")

// Hook is a named cleanup step. Lower priorities run first.
type Hook struct {
	Name     string
	Priority int
	Cleanup  func(ctx context.Context) error
}

// CoordinatorConfig configures the shutdown coordinator.
type CoordinatorConfig struct {
	// Deadline is the hard cap on total shutdown time.
	// Default: 10 seconds
	Deadline time.Duration

	// Logger records hook progress and failures. Optional.
	Logger observe.Logger
}

// Coordinator runs registered cleanup hooks in ascending priority order
// under a hard deadline. Each hook is awaited to completion before the
// next begins; a failing hook is logged and does not block later hooks.
type Coordinator struct {
	config CoordinatorConfig

	mu       sync.Mutex
	hooks    []Hook
	shutdown bool
}

// NewCoordinator creates a new shutdown coordinator.
func NewCoordinator(config CoordinatorConfig) *Coordinator {
	// Apply defaults
	if config.Deadline <= 0 {
		config.Deadline = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	return &Coordinator{config: config}
}

// AddHook registers a cleanup hook. Registration after shutdown has begun
// is rejected.
func (c *Coordinator) AddHook(hook Hook) error {
	if hook.Cleanup == nil {
		return errors.New("track: hook cleanup is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return errors.New("track: shutdown already begun")
	}
	c.hooks = append(c.hooks, hook)
	return nil
}

// ShuttingDown reports whether Run has been invoked.
func (c *Coordinator) ShuttingDown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shutdown
}

// Run executes all hooks in ascending priority order, each exactly once.
// It returns ErrDeadlineExceeded if the deadline cut the sequence short,
// otherwise nil. Hook failures are logged, not returned.
func (c *Coordinator) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return errors.New("track: shutdown already run")
	}
	c.shutdown = true
	hooks := make([]Hook, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.Unlock()

	// Stable: hooks with equal priority keep registration order.
	sort.SliceStable(hooks, func(i, j int) bool {
		return hooks[i].Priority < hooks[j].Priority
	})

	// Shutdown is usually triggered by an already-cancelled signal
	// context; only the deadline bounds the hooks, or the drain would be
	// skipped before it started.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.Deadline)
	defer cancel()

	logger := c.config.Logger
	start := time.Now()

	for _, hook := range hooks {
		if ctx.Err() != nil {
			logger.Warn(ctx, "shutdown deadline reached, abandoning remaining hooks",
				observe.Field{Key: "hook", Value: hook.Name})
			return ErrDeadlineExceeded
		}

		logger.Debug(ctx, "running shutdown hook",
			observe.Field{Key: "hook", Value: hook.Name},
			observe.Field{Key: "priority", Value: hook.Priority})

		if err := c.runHook(ctx, hook); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				logger.Warn(ctx, "shutdown hook abandoned at deadline",
					observe.Field{Key: "hook", Value: hook.Name})
				return ErrDeadlineExceeded
			}
			logger.Error(ctx, "shutdown hook failed",
				observe.Field{Key: "hook", Value: hook.Name},
				observe.Field{Key: "error", Value: err.Error()})
		}
	}

	logger.Info(ctx, "shutdown complete",
		observe.Field{Key: "hooks", Value: len(hooks)},
		observe.Field{Key: "elapsed", Value: time.Since(start).String()})
	return nil
}

// runHook awaits a single hook, or the deadline, whichever comes first.
func (c *Coordinator) runHook(ctx context.Context, hook Hook) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("track: hook %s panicked: %v", hook.Name, r)
			}
		}()
		done <- hook.Cleanup(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainHook returns a hook that polls the tracker at the given interval and
// completes once no requests are in flight. If the deadline elapses first,
// the hook reports the requests abandoned rather than awaiting them.
func DrainHook(tracker *Tracker, priority int, interval time.Duration) Hook {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	return Hook{
		Name:     "drain-requests",
		Priority: priority,
		Cleanup: func(ctx context.Context) error {
			if tracker.Size() == 0 {
				return nil
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					if tracker.Size() == 0 {
						return nil
					}
				case <-ctx.Done():
					abandoned := tracker.Active()
					ids := make([]string, len(abandoned))
					for i, r := range abandoned {
						ids[i] = r.ID
					}
					return fmt.Errorf("track: abandoned %d in-flight requests %v: %w",
						len(ids), ids, ctx.Err())
				}
			}
		},
	}
}
