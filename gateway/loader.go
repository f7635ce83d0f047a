package gateway

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/singleflight"

	"github.com/openjuris/lexgate/cache"
	"github.com/openjuris/lexgate/observe"
)

// Fetch produces a fresh result for a cache miss.
type Fetch func(ctx context.Context) (json.RawMessage, error)

// Loader is the cache-aside read path. Concurrent misses for the same key
// are collapsed into a single upstream flight; the losers get the
// winner's result (or its error) without touching the upstream.
type Loader struct {
	cache   cache.Cache
	keyer   cache.Keyer
	policy  cache.Policy
	metrics observe.Metrics
	logger  observe.Logger
	group   singleflight.Group
}

func NewLoader(store cache.Cache, policy cache.Policy, metrics observe.Metrics, logger observe.Logger) *Loader {
	if store == nil {
		store = cache.Disabled()
	}
	if metrics == nil {
		metrics = observe.NopMetrics()
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Loader{
		cache:   store,
		keyer:   cache.NewDefaultKeyer(),
		policy:  policy,
		metrics: metrics,
		logger:  logger,
	}
}

// Load returns the cached result for the operation, or runs fetch and
// stores the outcome. The bool reports whether the result came from
// cache. Errors are never cached.
func (l *Loader) Load(ctx context.Context, operation string, params map[string]any, fetch Fetch) (json.RawMessage, bool, error) {
	if !l.policy.ShouldCache() {
		result, err := fetch(ctx)
		return result, false, err
	}

	key, err := l.keyer.Key(operation, params)
	if err != nil {
		// Unkeyable params make the call uncacheable, not an error.
		result, err := fetch(ctx)
		return result, false, err
	}

	if value, ok := l.cache.Get(ctx, key); ok {
		l.metrics.RecordCacheLookup(ctx, operation, true)
		return json.RawMessage(value), true, nil
	}
	l.metrics.RecordCacheLookup(ctx, operation, false)

	value, err, _ := l.group.Do(key, func() (any, error) {
		// A concurrent flight may have filled the cache while this call
		// waited on the group lock.
		if value, ok := l.cache.Get(ctx, key); ok {
			return json.RawMessage(value), nil
		}
		result, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := l.cache.Set(ctx, key, result, l.policy.EffectiveTTL(0)); err != nil {
			// A failed write skips the cache; the fresh result still
			// goes back to the caller.
			l.logger.Warn(ctx, "cache write failed",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()})
		}
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value.(json.RawMessage), false, nil
}

// Invalidate removes the cached entry for the given operation and params.
func (l *Loader) Invalidate(ctx context.Context, operation string, params map[string]any) error {
	key, err := l.keyer.Key(operation, params)
	if err != nil {
		return err
	}
	return l.cache.Delete(ctx, key)
}
