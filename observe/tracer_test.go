package observe

import (
	"context"
	"errors"
	"testing"

	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestTracer_StartEndSpan(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider().Tracer("test"))

	meta := RequestMeta{
		RequestID:  "req-1",
		Operation:  "search_opinions",
		Dependency: "research-api",
		ClientID:   "key-123",
	}

	ctx, span := tracer.StartSpan(context.Background(), meta)
	if ctx == nil {
		t.Fatal("StartSpan() ctx = nil")
	}
	if span == nil {
		t.Fatal("StartSpan() span = nil")
	}

	// EndSpan must not panic for either outcome
	tracer.EndSpan(span, nil)

	_, span = tracer.StartSpan(context.Background(), meta)
	tracer.EndSpan(span, errors.New("boom"))
}

func TestNewNopTracer(t *testing.T) {
	tracer := NewNopTracer()

	_, span := tracer.StartSpan(context.Background(), RequestMeta{Operation: "op"})
	tracer.EndSpan(span, nil)
}
