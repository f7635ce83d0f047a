package track

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCoordinator_HooksRunInPriorityOrder(t *testing.T) {
	c := NewCoordinator(CoordinatorConfig{Deadline: time.Second})

	var mu sync.Mutex
	var order []string
	record := func(name string) func(context.Context) error {
		return func(ctx context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	// Registered out of order on purpose
	c.AddHook(Hook{Name: "third", Priority: 30, Cleanup: record("third")})
	c.AddHook(Hook{Name: "first", Priority: 10, Cleanup: record("first")})
	c.AddHook(Hook{Name: "second", Priority: 20, Cleanup: record("second")})

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestCoordinator_EqualPriorityKeepsRegistrationOrder(t *testing.T) {
	c := NewCoordinator(CoordinatorConfig{Deadline: time.Second})

	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		c.AddHook(Hook{Name: name, Priority: 10, Cleanup: func(ctx context.Context) error {
			order = append(order, name)
			return nil
		}})
	}

	c.Run(context.Background())

	for i, want := range []string{"a", "b", "c"} {
		if order[i] != want {
			t.Fatalf("order = %v, want [a b c]", order)
		}
	}
}

func TestCoordinator_FailingHookDoesNotBlockOthers(t *testing.T) {
	c := NewCoordinator(CoordinatorConfig{Deadline: time.Second})

	ran := false
	c.AddHook(Hook{Name: "failing", Priority: 1, Cleanup: func(ctx context.Context) error {
		return errors.New("cleanup failed")
	}})
	c.AddHook(Hook{Name: "after", Priority: 2, Cleanup: func(ctx context.Context) error {
		ran = true
		return nil
	}})

	if err := c.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v, want nil (hook failures are logged)", err)
	}
	if !ran {
		t.Error("hook after the failing one did not run")
	}
}

func TestCoordinator_PanickingHookContained(t *testing.T) {
	c := NewCoordinator(CoordinatorConfig{Deadline: time.Second})

	ran := false
	c.AddHook(Hook{Name: "panicking", Priority: 1, Cleanup: func(ctx context.Context) error {
		panic("boom")
	}})
	c.AddHook(Hook{Name: "after", Priority: 2, Cleanup: func(ctx context.Context) error {
		ran = true
		return nil
	}})

	if err := c.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
	if !ran {
		t.Error("hook after the panicking one did not run")
	}
}

func TestCoordinator_DeadlineAbandonsSlowHook(t *testing.T) {
	c := NewCoordinator(CoordinatorConfig{Deadline: 50 * time.Millisecond})

	c.AddHook(Hook{Name: "slow", Priority: 1, Cleanup: func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}})

	start := time.Now()
	err := c.Run(context.Background())
	elapsed := time.Since(start)

	if !errors.Is(err, ErrDeadlineExceeded) {
		t.Errorf("Run() error = %v, want ErrDeadlineExceeded", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("Run() took %v, want ~50ms", elapsed)
	}
}

func TestCoordinator_CancelledParentStillRunsHooks(t *testing.T) {
	c := NewCoordinator(CoordinatorConfig{Deadline: time.Second})

	ran := false
	if err := c.AddHook(Hook{
		Name:     "cleanup",
		Priority: 10,
		Cleanup: func(context.Context) error {
			ran = true
			return nil
		},
	}); err != nil {
		t.Fatalf("AddHook() error = %v", err)
	}

	// A signal-driven shutdown hands Run a context that is already
	// cancelled; the hooks must still get their full deadline.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !ran {
		t.Error("hook did not run under cancelled parent context")
	}
}

func TestCoordinator_CancelledParentStillDrains(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin("req-1")

	c := NewCoordinator(CoordinatorConfig{Deadline: time.Second})
	c.AddHook(DrainHook(tracker, 20, 5*time.Millisecond))

	go func() {
		time.Sleep(50 * time.Millisecond)
		tracker.End("req-1")
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Run() returned in %v, before the in-flight request finished", elapsed)
	}
	if tracker.Size() != 0 {
		t.Errorf("tracker size = %d after drain, want 0", tracker.Size())
	}
}

func TestCoordinator_RunOnlyOnce(t *testing.T) {
	c := NewCoordinator(CoordinatorConfig{Deadline: time.Second})

	runs := 0
	c.AddHook(Hook{Name: "once", Priority: 1, Cleanup: func(ctx context.Context) error {
		runs++
		return nil
	}})

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := c.Run(context.Background()); err == nil {
		t.Error("second Run() error = nil, want error")
	}
	if runs != 1 {
		t.Errorf("hook runs = %d, want 1", runs)
	}
}

func TestCoordinator_AddHookAfterShutdownRejected(t *testing.T) {
	c := NewCoordinator(CoordinatorConfig{Deadline: time.Second})

	c.Run(context.Background())

	err := c.AddHook(Hook{Name: "late", Priority: 1, Cleanup: func(ctx context.Context) error {
		return nil
	}})
	if err == nil {
		t.Error("AddHook() after Run = nil, want error")
	}
	if !c.ShuttingDown() {
		t.Error("ShuttingDown() = false, want true")
	}
}

func TestCoordinator_NilCleanupRejected(t *testing.T) {
	c := NewCoordinator(CoordinatorConfig{})

	if err := c.AddHook(Hook{Name: "nil"}); err == nil {
		t.Error("AddHook() with nil Cleanup = nil, want error")
	}
}

func TestDrainHook_CompletesWhenRequestsFinish(t *testing.T) {
	tr := NewTracker()
	tr.Begin("req-1")
	tr.Begin("req-2")

	// Both requests finish after 50ms, well before the 200ms deadline
	go func() {
		time.Sleep(50 * time.Millisecond)
		tr.End("req-1")
		tr.End("req-2")
	}()

	c := NewCoordinator(CoordinatorConfig{Deadline: 200 * time.Millisecond})
	c.AddHook(DrainHook(tr, 20, 10*time.Millisecond))

	start := time.Now()
	err := c.Run(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
	if elapsed >= 200*time.Millisecond {
		t.Errorf("Run() took %v, want < 200ms deadline", elapsed)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("Run() took %v, want >= 50ms (waited for requests)", elapsed)
	}
}

func TestDrainHook_AbandonsAtDeadline(t *testing.T) {
	tr := NewTracker()
	tr.Begin("stuck-request")

	c := NewCoordinator(CoordinatorConfig{Deadline: 200 * time.Millisecond})
	c.AddHook(DrainHook(tr, 20, 10*time.Millisecond))

	start := time.Now()
	err := c.Run(context.Background())
	elapsed := time.Since(start)

	if !errors.Is(err, ErrDeadlineExceeded) {
		t.Errorf("Run() error = %v, want ErrDeadlineExceeded", err)
	}
	if elapsed < 150*time.Millisecond || elapsed > time.Second {
		t.Errorf("Run() took %v, want ~200ms", elapsed)
	}

	// The stuck request is still recorded; teardown of its connection is
	// the caller's concern.
	if tr.Size() != 1 {
		t.Errorf("Size() = %d, want 1 (abandoned request still recorded)", tr.Size())
	}
}

func TestDrainHook_ImmediateWhenEmpty(t *testing.T) {
	tr := NewTracker()

	c := NewCoordinator(CoordinatorConfig{Deadline: time.Second})
	c.AddHook(DrainHook(tr, 20, 10*time.Millisecond))

	start := time.Now()
	if err := c.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Run() took %v on empty tracker, want immediate", elapsed)
	}
}
