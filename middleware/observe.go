package middleware

import (
	"context"
	"time"

	"github.com/openjuris/lexgate/observe"
)

// Observe is the innermost step: it logs and measures the core operation,
// including failures unwinding from it. Errors pass through unmodified.
type Observe struct {
	logger  observe.Logger
	metrics observe.Metrics
}

var _ Middleware = (*Observe)(nil)

func NewObserve(logger observe.Logger, metrics observe.Metrics) *Observe {
	if logger == nil {
		logger = observe.NopLogger()
	}
	if metrics == nil {
		metrics = observe.NopMetrics()
	}
	return &Observe{logger: logger, metrics: metrics}
}

func (o *Observe) Name() string { return "observe" }

func (o *Observe) Handle(ctx context.Context, req *Request, next Next) (*Response, error) {
	meta := observe.RequestMeta{
		RequestID: req.ID,
		Operation: req.Operation,
	}
	if req.Identity != nil {
		meta.ClientID = req.Identity.Principal
	}

	start := time.Now()
	resp, err := next(ctx, req)
	elapsed := time.Since(start)

	o.metrics.RecordRequest(ctx, meta, elapsed, err)

	fields := []observe.Field{
		{Key: "request.id", Value: req.ID},
		{Key: "request.operation", Value: req.Operation},
		{Key: "client.id", Value: meta.ClientID},
		{Key: "duration_ms", Value: elapsed.Milliseconds()},
	}
	if err != nil {
		fields = append(fields, observe.Field{Key: "error", Value: err.Error()})
		o.logger.Error(ctx, "request failed", fields...)
		return nil, err
	}
	if resp != nil && resp.Cached {
		fields = append(fields, observe.Field{Key: "cache.hit", Value: true})
	}
	o.logger.Info(ctx, "request completed", fields...)
	return resp, nil
}
