package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// RequestMeta contains metadata about a gateway request for telemetry.
type RequestMeta struct {
	RequestID  string // Assigned request id
	Operation  string // Logical operation name (required)
	Dependency string // Upstream dependency serving the operation (optional)
	ClientID   string // Caller identity (optional)
}

// SpanName returns the deterministic span name for this request.
// Format: gateway.call.<operation>
func (m RequestMeta) SpanName() string {
	return "gateway.call." + m.Operation
}

// Tracer wraps OpenTelemetry tracing with request-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a gateway request.
	StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with request metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("request.id", meta.RequestID),
		attribute.String("request.operation", meta.Operation),
		attribute.Bool("request.error", false), // Updated in EndSpan on error
	}

	if meta.Dependency != "" {
		attrs = append(attrs, attribute.String("request.dependency", meta.Dependency))
	}
	if meta.ClientID != "" {
		attrs = append(attrs, attribute.String("request.client_id", meta.ClientID))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("request.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NewNopTracer creates a tracer that records nothing.
func NewNopTracer() Tracer {
	return &tracerImpl{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
