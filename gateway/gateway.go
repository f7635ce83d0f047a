package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openjuris/lexgate/cache"
	"github.com/openjuris/lexgate/health"
	"github.com/openjuris/lexgate/middleware"
	"github.com/openjuris/lexgate/observe"
	"github.com/openjuris/lexgate/resilience"
	"github.com/openjuris/lexgate/track"
	"github.com/openjuris/lexgate/upstream"
)

// Caller issues the actual upstream request. Satisfied by *upstream.Client.
type Caller interface {
	Call(ctx context.Context, operation string, params map[string]any) (json.RawMessage, error)
}

var _ Caller = (*upstream.Client)(nil)

// Config assembles a Gateway.
type Config struct {
	// Upstream executes operations against the data source. Required.
	Upstream Caller

	// Chain is the middleware stack run around every call. Required;
	// normally built with middleware.NewStack.
	Chain *middleware.Chain

	// Cache holds upstream responses. Defaults to a disabled cache.
	Cache cache.Cache

	// CachePolicy decides TTLs. Defaults to cache.DefaultPolicy.
	CachePolicy cache.Policy

	// Retry bounds upstream attempts. Zero values get the package
	// defaults; RetryIf defaults to upstream.IsRetryable so terminal 4xx
	// responses are not retried.
	Retry resilience.RetryConfig

	// Breakers guard upstream dependencies. Defaults to a registry with
	// default breaker settings.
	Breakers *resilience.Registry

	// Queue smooths outbound request rate. Optional.
	Queue *resilience.FairQueue

	// UpstreamTimeout caps a single upstream attempt. Defaults to 30s.
	UpstreamTimeout time.Duration

	// ShutdownDeadline bounds the whole shutdown sequence. Defaults
	// to 10s.
	ShutdownDeadline time.Duration

	// DrainInterval is how often the drain hook polls the tracker.
	// Defaults to 50ms.
	DrainInterval time.Duration

	Logger  observe.Logger
	Metrics observe.Metrics

	// Observer, when set, is flushed during shutdown.
	Observer observe.Observer
}

// Gateway is the protocol-facing entry point for data source operations.
type Gateway struct {
	upstream    Caller
	chain       *middleware.Chain
	loader      *Loader
	cache       cache.Cache
	breakers    *resilience.Registry
	queue       *resilience.FairQueue
	retry       resilience.RetryConfig
	timeout     time.Duration
	tracker     *track.Tracker
	coordinator *track.Coordinator
	logger      observe.Logger
	metrics     observe.Metrics
	observer    observe.Observer
}

// Request is one inbound operation invocation.
type Request struct {
	// Operation names the data source operation, e.g. "search_opinions".
	Operation string

	// Params are the operation parameters.
	Params map[string]any

	// Headers carry the caller's credentials.
	Headers map[string]string
}

func New(config Config) (*Gateway, error) {
	if config.Upstream == nil {
		return nil, fmt.Errorf("gateway: Config.Upstream is required")
	}
	if config.Chain == nil {
		return nil, fmt.Errorf("gateway: Config.Chain is required")
	}
	if config.Cache == nil {
		config.Cache = cache.Disabled()
	}
	if config.CachePolicy == (cache.Policy{}) {
		config.CachePolicy = cache.DefaultPolicy()
	}
	if config.UpstreamTimeout <= 0 {
		config.UpstreamTimeout = 30 * time.Second
	}
	if config.ShutdownDeadline <= 0 {
		config.ShutdownDeadline = 10 * time.Second
	}
	if config.DrainInterval <= 0 {
		config.DrainInterval = 50 * time.Millisecond
	}
	if config.Logger == nil && config.Observer != nil {
		config.Logger = config.Observer.Logger()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil && config.Observer != nil {
		config.Metrics = config.Observer.Metrics()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NopMetrics()
	}
	if config.Breakers == nil {
		metrics := config.Metrics
		config.Breakers = resilience.NewRegistry(resilience.CircuitBreakerConfig{
			OnStateChange: func(dependency string, from, to resilience.State) {
				metrics.RecordBreakerTransition(context.Background(), dependency, from.String(), to.String())
			},
		})
	}
	if config.Retry.RetryIf == nil {
		config.Retry.RetryIf = upstream.IsRetryable
	}

	g := &Gateway{
		upstream: config.Upstream,
		chain:    config.Chain,
		loader:   NewLoader(config.Cache, config.CachePolicy, config.Metrics, config.Logger),
		cache:    config.Cache,
		breakers: config.Breakers,
		queue:    config.Queue,
		retry:    config.Retry,
		timeout:  config.UpstreamTimeout,
		tracker:  track.NewTracker(),
		coordinator: track.NewCoordinator(track.CoordinatorConfig{
			Deadline: config.ShutdownDeadline,
			Logger:   config.Logger,
		}),
		logger:   config.Logger,
		metrics:  config.Metrics,
		observer: config.Observer,
	}
	g.registerShutdownHooks(config.DrainInterval)
	return g, nil
}

// Call runs one operation through the full pipeline.
func (g *Gateway) Call(ctx context.Context, req Request) (json.RawMessage, error) {
	if g.coordinator.ShuttingDown() {
		return nil, ErrShutdownInProgress
	}

	id := uuid.NewString()
	g.tracker.Begin(id)
	defer g.tracker.End(id)

	mreq := &middleware.Request{
		ID:        id,
		Operation: req.Operation,
		Params:    req.Params,
		Headers:   req.Headers,
		StartedAt: time.Now(),
	}
	resp, err := g.chain.Execute(ctx, mreq, g.invoke)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// invoke is the core operation at the end of the middleware chain.
func (g *Gateway) invoke(ctx context.Context, req *middleware.Request) (*middleware.Response, error) {
	result, cached, err := g.loader.Load(ctx, req.Operation, req.Params, func(ctx context.Context) (json.RawMessage, error) {
		return g.callUpstream(ctx, req.Operation, req.Params)
	})
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Result: result, Cached: cached}, nil
}

// callUpstream runs the upstream call under the resilience stack: fair
// queue, retry, per-dependency breaker, per-attempt timeout.
func (g *Gateway) callUpstream(ctx context.Context, operation string, params map[string]any) (json.RawMessage, error) {
	dependency := dependencyFor(operation)

	retry := g.retry
	if retry.OnRetry == nil {
		retry.OnRetry = func(attempt int, err error, delay time.Duration) {
			g.metrics.RecordRetry(ctx, dependency, attempt)
			g.logger.Debug(ctx, "retrying upstream call",
				observe.Field{Key: "dependency", Value: dependency},
				observe.Field{Key: "attempt", Value: attempt},
				observe.Field{Key: "error", Value: err.Error()})
		}
	}

	opts := []resilience.ExecutorOption{
		resilience.WithRetry(resilience.NewRetry(retry)),
		resilience.WithCircuitBreaker(g.breakers.Get(dependency)),
		resilience.WithTimeout(g.timeout),
	}
	if g.queue != nil {
		opts = append(opts, resilience.WithFairQueue(g.queue))
	}
	exec := resilience.NewExecutor(opts...)

	var result json.RawMessage
	err := exec.Execute(ctx, func(ctx context.Context) error {
		r, err := g.upstream.Call(ctx, operation, params)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// dependencyFor maps an operation to the breaker guarding it. Search and
// citation lookups hit a different upstream subsystem than the id-keyed
// record fetches, so they fail independently.
func dependencyFor(operation string) string {
	switch operation {
	case "search_opinions", "lookup_citation":
		return "search"
	default:
		return "records"
	}
}

// Invalidate drops the cached response for one operation invocation.
func (g *Gateway) Invalidate(ctx context.Context, operation string, params map[string]any) error {
	return g.loader.Invalidate(ctx, operation, params)
}

// Collector exposes the pipeline internals to the health package.
func (g *Gateway) Collector() *health.Collector {
	return health.NewCollector(g.cache, g.breakers, g.tracker)
}

// Tracker returns the in-flight request tracker.
func (g *Gateway) Tracker() *track.Tracker {
	return g.tracker
}

// ShuttingDown reports whether shutdown has begun.
func (g *Gateway) ShuttingDown() bool {
	return g.coordinator.ShuttingDown()
}

// Shutdown stops intake, drains in-flight requests, and releases
// resources, bounded by the configured deadline.
func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.coordinator.Run(ctx)
}

func (g *Gateway) registerShutdownHooks(drainInterval time.Duration) {
	// Intake is already refused once the coordinator starts; this hook
	// exists so the cutoff is logged in order with the rest.
	_ = g.coordinator.AddHook(track.Hook{
		Name:     "stop-intake",
		Priority: 10,
		Cleanup: func(ctx context.Context) error {
			g.logger.Info(ctx, "intake stopped")
			return nil
		},
	})
	_ = g.coordinator.AddHook(track.DrainHook(g.tracker, 20, drainInterval))
	_ = g.coordinator.AddHook(track.Hook{
		Name:     "release-resources",
		Priority: 30,
		Cleanup: func(ctx context.Context) error {
			if g.queue != nil {
				g.queue.Close()
			}
			if sweeper, ok := g.cache.(interface{ Sweep() int }); ok {
				sweeper.Sweep()
			}
			return nil
		},
	})
	_ = g.coordinator.AddHook(track.Hook{
		Name:     "flush-telemetry",
		Priority: 40,
		Cleanup: func(ctx context.Context) error {
			if g.observer != nil {
				return g.observer.Shutdown(ctx)
			}
			return nil
		},
	})
}
