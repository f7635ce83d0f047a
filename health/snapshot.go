package health

import (
	"context"
	"time"

	"github.com/openjuris/lexgate/cache"
	"github.com/openjuris/lexgate/resilience"
	"github.com/openjuris/lexgate/track"
)

// CacheStats is the cache slice of a snapshot.
type CacheStats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Size      int    `json:"size"`
}

// Snapshot is a point-in-time view of the gateway pipeline.
type Snapshot struct {
	Cache          CacheStats        `json:"cache"`
	Breakers       map[string]string `json:"breakers"`
	ActiveRequests int               `json:"activeRequests"`
	Timestamp      time.Time         `json:"timestamp"`
}

// Collector gathers snapshots from the pipeline's live components.
type Collector struct {
	cache    cache.Cache
	breakers *resilience.Registry
	tracker  *track.Tracker
}

func NewCollector(c cache.Cache, breakers *resilience.Registry, tracker *track.Tracker) *Collector {
	if c == nil {
		c = cache.Disabled()
	}
	return &Collector{cache: c, breakers: breakers, tracker: tracker}
}

// Snapshot reads every component once. Reads are independently locked, so
// the slices are individually consistent but not mutually atomic.
func (c *Collector) Snapshot() Snapshot {
	snap := Snapshot{
		Breakers:  make(map[string]string),
		Timestamp: time.Now(),
	}

	stats := c.cache.Stats()
	snap.Cache = CacheStats{
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Evictions: stats.Evictions,
		Size:      stats.Size,
	}

	if c.breakers != nil {
		for name, state := range c.breakers.States() {
			snap.Breakers[name] = state.String()
		}
	}
	if c.tracker != nil {
		snap.ActiveRequests = c.tracker.Size()
	}
	return snap
}

// BreakerChecker reports degraded when any circuit is open. An open
// breaker means the upstream is rejecting or failing, but the gateway
// itself still serves cached and non-broken operations.
func (c *Collector) BreakerChecker() Checker {
	return NewCheckerFunc("breakers", func(context.Context) Result {
		if c.breakers == nil || c.breakers.AllHealthy() {
			return Healthy("all circuits closed")
		}
		open := make(map[string]any)
		for name, state := range c.breakers.States() {
			if state != resilience.StateClosed {
				open[name] = state.String()
			}
		}
		return Degraded("circuits open").WithDetails(open)
	})
}

// TrackerChecker reports the in-flight request count.
func (c *Collector) TrackerChecker() Checker {
	return NewCheckerFunc("requests", func(context.Context) Result {
		size := 0
		if c.tracker != nil {
			size = c.tracker.Size()
		}
		return Healthy("tracking in-flight requests").WithDetails(map[string]any{
			"active": size,
		})
	})
}
