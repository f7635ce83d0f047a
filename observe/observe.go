package observe

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/openjuris/lexgate/observe/exporters"
)

// Config assembles an Observer. Subsystems are off unless Enabled; a
// disabled subsystem costs nothing at call sites because the Observer
// hands out no-op implementations in its place.
type Config struct {
	ServiceName string
	Version     string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

// TracingConfig configures span export for the pipeline.
type TracingConfig struct {
	Enabled   bool
	Exporter  string  // otlp|jaeger|stdout|none
	SamplePct float64 // 0.0-1.0
}

// MetricsConfig configures the gateway request metrics.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // otlp|prometheus|stdout|none
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Enabled bool
	Level   string // debug|info|warn|error
}

// oneOf reports whether value is empty or among allowed. Empty means
// the default for that knob.
func oneOf(value string, allowed ...string) bool {
	if value == "" {
		return true
	}
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func (c TracingConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if !oneOf(c.Exporter, "otlp", "jaeger", "stdout", "none") {
		return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, c.Exporter)
	}
	if c.SamplePct < 0 || c.SamplePct > 1.0 {
		return fmt.Errorf("%w: %f", ErrInvalidSamplePct, c.SamplePct)
	}
	return nil
}

func (c MetricsConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if !oneOf(c.Exporter, "otlp", "prometheus", "stdout", "none") {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, c.Exporter)
	}
	return nil
}

func (c LoggingConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if !oneOf(c.Level, "debug", "info", "warn", "error") {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Level)
	}
	return nil
}

// Validate checks the configuration before any provider is built.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if err := c.Tracing.validate(); err != nil {
		return err
	}
	if err := c.Metrics.validate(); err != nil {
		return err
	}
	return c.Logging.validate()
}

// Observer hands out the telemetry primitives the pipeline records
// through.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Shutdown must honor cancellation/deadlines.
// - Errors: Shutdown should be idempotent and return the first error encountered.
type Observer interface {
	// Tracer returns the configured tracer.
	Tracer() trace.Tracer

	// Meter returns the configured meter.
	Meter() metric.Meter

	// Metrics returns the gateway request metrics built on the meter.
	// No-op when the metrics subsystem is disabled.
	Metrics() Metrics

	// Logger returns the configured logger.
	Logger() Logger

	// Shutdown flushes and stops all telemetry providers.
	Shutdown(ctx context.Context) error
}

// Logger is a minimal structured logging interface.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
}

// Field represents a structured log field.
type Field struct {
	Key   string
	Value any
}

type observer struct {
	tracer         trace.Tracer
	meter          metric.Meter
	metrics        Metrics
	logger         Logger
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// NewObserver builds an Observer from cfg. Disabled subsystems get
// no-op primitives, so callers never branch on configuration.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: build resource: %w", err)
	}

	obs := &observer{
		tracer:  tracenoop.NewTracerProvider().Tracer("noop"),
		meter:   noop.NewMeterProvider().Meter("noop"),
		metrics: NopMetrics(),
		logger:  NopLogger(),
	}

	if cfg.Tracing.Enabled {
		if err := obs.startTracing(ctx, cfg, res); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics.Enabled {
		if err := obs.startMetrics(ctx, cfg, res); err != nil {
			return nil, err
		}
	}
	if cfg.Logging.Enabled {
		obs.logger = NewLogger(cfg.Logging.Level)
	}

	return obs, nil
}

func (o *observer) startTracing(ctx context.Context, cfg Config, res *resource.Resource) error {
	exporter, err := exporters.NewTracingExporter(ctx, cfg.Tracing.Exporter)
	if err != nil {
		return fmt.Errorf("observe: trace exporter: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.Tracing.SamplePct)),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	o.tracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(o.tracerProvider)
	o.tracer = o.tracerProvider.Tracer(cfg.ServiceName)
	return nil
}

func (o *observer) startMetrics(ctx context.Context, cfg Config, res *resource.Resource) error {
	reader, err := exporters.NewMetricsReader(ctx, cfg.Metrics.Exporter)
	if err != nil {
		return fmt.Errorf("observe: metrics reader: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	o.meterProvider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(o.meterProvider)
	o.meter = o.meterProvider.Meter(cfg.ServiceName)

	metrics, err := NewMetrics(o.meter)
	if err != nil {
		return fmt.Errorf("observe: build metrics: %w", err)
	}
	o.metrics = metrics
	return nil
}

// samplerFor clamps the configured ratio to the always/never samplers
// at the endpoints so the common 0 and 1 cases skip the ratio math.
func samplerFor(pct float64) sdktrace.Sampler {
	switch {
	case pct >= 1.0:
		return sdktrace.AlwaysSample()
	case pct <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(pct)
	}
}

func (o *observer) Tracer() trace.Tracer { return o.tracer }

func (o *observer) Meter() metric.Meter { return o.meter }

func (o *observer) Metrics() Metrics { return o.metrics }

func (o *observer) Logger() Logger { return o.logger }

func (o *observer) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observe: tracer shutdown: %w", err))
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observe: meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
