package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records pipeline metrics for gateway requests.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic; recording is best-effort.
type Metrics interface {
	// RecordRequest records a completed request with duration and outcome.
	RecordRequest(ctx context.Context, meta RequestMeta, duration time.Duration, err error)

	// RecordCacheLookup records a response cache hit or miss.
	RecordCacheLookup(ctx context.Context, operation string, hit bool)

	// RecordBreakerTransition records a circuit breaker state change.
	RecordBreakerTransition(ctx context.Context, dependency, from, to string)

	// RecordRetry records a retry attempt against a dependency.
	RecordRetry(ctx context.Context, dependency string, attempt int)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheLookups metric.Int64Counter
	breakerTrans metric.Int64Counter
	retryCount   metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"gateway.requests.total",
		metric.WithDescription("Total number of gateway requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"gateway.requests.errors",
		metric.WithDescription("Total number of failed gateway requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"gateway.request.duration_ms",
		metric.WithDescription("Gateway request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"gateway.cache.lookups",
		metric.WithDescription("Response cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	breakerTrans, err := meter.Int64Counter(
		"gateway.breaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"gateway.upstream.retries",
		metric.WithDescription("Retry attempts against upstream dependencies"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		cacheLookups: cacheLookups,
		breakerTrans: breakerTrans,
		retryCount:   retryCount,
	}, nil
}

// RecordRequest records metrics for a completed request.
func (m *metricsImpl) RecordRequest(ctx context.Context, meta RequestMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", meta.Operation),
	}
	if meta.Dependency != "" {
		attrs = append(attrs, attribute.String("dependency", meta.Dependency))
	}

	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, operation string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("result", result),
	))
}

func (m *metricsImpl) RecordBreakerTransition(ctx context.Context, dependency, from, to string) {
	m.breakerTrans.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dependency", dependency),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (m *metricsImpl) RecordRetry(ctx context.Context, dependency string, attempt int) {
	m.retryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dependency", dependency),
		attribute.Int("attempt", attempt),
	))
}

// NopMetrics returns a metrics implementation that records nothing.
func NopMetrics() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) RecordRequest(context.Context, RequestMeta, time.Duration, error) {}
func (nopMetrics) RecordCacheLookup(context.Context, string, bool)                  {}
func (nopMetrics) RecordBreakerTransition(context.Context, string, string, string)  {}
func (nopMetrics) RecordRetry(context.Context, string, int)                         {}
