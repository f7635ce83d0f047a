package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openjuris/lexgate/cache"
	"github.com/openjuris/lexgate/resilience"
	"github.com/openjuris/lexgate/track"
)

func testCollector(t *testing.T) (*Collector, *resilience.Registry, *track.Tracker) {
	t.Helper()

	store := cache.NewMemoryCache(cache.MemoryConfig{MaxEntries: 10})
	ctx := context.Background()
	if err := store.Set(ctx, "k1", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	store.Get(ctx, "k1")      // hit
	store.Get(ctx, "missing") // miss

	registry := resilience.NewRegistry(resilience.CircuitBreakerConfig{MaxFailures: 1})
	tracker := track.NewTracker()
	return NewCollector(store, registry, tracker), registry, tracker
}

func TestSnapshot(t *testing.T) {
	collector, registry, tracker := testCollector(t)

	// Open the search breaker, leave the docket breaker closed.
	boom := errors.New("upstream down")
	_ = registry.Execute(context.Background(), "search", func(context.Context) error { return boom })
	registry.Get("dockets")

	tracker.Begin("req-1")
	tracker.Begin("req-2")

	snap := collector.Snapshot()

	if snap.Cache.Hits != 1 || snap.Cache.Misses != 1 {
		t.Errorf("cache stats = %+v, want 1 hit / 1 miss", snap.Cache)
	}
	if snap.Cache.Size != 1 {
		t.Errorf("cache size = %d, want 1", snap.Cache.Size)
	}
	if snap.Breakers["search"] != "open" {
		t.Errorf("search breaker = %q, want %q", snap.Breakers["search"], "open")
	}
	if snap.Breakers["dockets"] != "closed" {
		t.Errorf("dockets breaker = %q, want %q", snap.Breakers["dockets"], "closed")
	}
	if snap.ActiveRequests != 2 {
		t.Errorf("ActiveRequests = %d, want 2", snap.ActiveRequests)
	}
	if snap.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}

func TestSnapshotNilComponents(t *testing.T) {
	collector := NewCollector(nil, nil, nil)
	snap := collector.Snapshot()
	if snap.ActiveRequests != 0 || len(snap.Breakers) != 0 {
		t.Errorf("empty collector snapshot = %+v, want zeros", snap)
	}
}

func TestBreakerChecker(t *testing.T) {
	collector, registry, _ := testCollector(t)

	checker := collector.BreakerChecker()
	if got := checker.Check(context.Background()).Status; got != StatusHealthy {
		t.Errorf("status with all circuits closed = %v, want healthy", got)
	}

	_ = registry.Execute(context.Background(), "search", func(context.Context) error {
		return errors.New("fail")
	})
	result := checker.Check(context.Background())
	if result.Status != StatusDegraded {
		t.Errorf("status with open circuit = %v, want degraded", result.Status)
	}
	if result.Details["search"] != "open" {
		t.Errorf("details = %v, want search marked open", result.Details)
	}
}

func TestTrackerChecker(t *testing.T) {
	collector, _, tracker := testCollector(t)
	tracker.Begin("req-1")

	result := collector.TrackerChecker().Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("status = %v, want healthy", result.Status)
	}
	if result.Details["active"] != 1 {
		t.Errorf("active = %v, want 1", result.Details["active"])
	}
}
