package middleware

import (
	"context"

	"github.com/openjuris/lexgate/resilience"
)

// RateLimit charges the caller's windowed quota. It runs after
// sanitization, so rejected input never consumes budget.
type RateLimit struct {
	limiter *resilience.ClientLimiter
}

var _ Middleware = (*RateLimit)(nil)

func NewRateLimit(limiter *resilience.ClientLimiter) *RateLimit {
	return &RateLimit{limiter: limiter}
}

func (r *RateLimit) Name() string { return "ratelimit" }

func (r *RateLimit) Handle(ctx context.Context, req *Request, next Next) (*Response, error) {
	clientID := "anonymous"
	limit := 0
	if req.Identity != nil {
		clientID = req.Identity.Principal
		limit = req.Identity.RateLimit
	}

	var decision resilience.Decision
	if limit > 0 {
		decision = r.limiter.CheckLimit(clientID, limit)
	} else {
		decision = r.limiter.Check(clientID)
	}
	if !decision.Allowed {
		return nil, &resilience.RateLimitError{
			ClientID:          clientID,
			RetryAfterSeconds: decision.RetryAfterSeconds,
		}
	}
	return next(ctx, req)
}
