package resilience

import (
	"context"
	"sync"
	"time"
)

// ClientLimiterConfig configures the inbound per-caller rate limiter.
type ClientLimiterConfig struct {
	// Limit is the number of requests allowed per window.
	// Default: 100
	Limit int

	// Window is the sliding window length.
	// Default: 60 seconds
	Window time.Duration
}

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int

	// RetryAfterSeconds is set when the request was denied, rounded up to
	// whole seconds, minimum 1.
	RetryAfterSeconds int
}

// ClientLimiter is a sliding-window rate limiter keyed by caller identity.
// Each check prunes timestamps older than the window before counting, so
// the admission condition is always evaluated against the trailing window
// ending now.
type ClientLimiter struct {
	config ClientLimiterConfig

	mu      sync.Mutex
	windows map[string][]time.Time

	now func() time.Time
}

// NewClientLimiter creates a new per-caller rate limiter.
func NewClientLimiter(config ClientLimiterConfig) *ClientLimiter {
	// Apply defaults
	if config.Limit <= 0 {
		config.Limit = 100
	}
	if config.Window <= 0 {
		config.Window = 60 * time.Second
	}

	return &ClientLimiter{
		config:  config,
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Check applies the configured limit to the caller's window.
func (l *ClientLimiter) Check(clientID string) Decision {
	return l.CheckLimit(clientID, l.config.Limit)
}

// CheckLimit applies a per-caller limit override. When the caller is under
// the limit the request is recorded and admitted; otherwise the decision
// carries the seconds until the oldest in-window timestamp ages out.
func (l *ClientLimiter) CheckLimit(clientID string, limit int) Decision {
	if limit <= 0 {
		limit = l.config.Limit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	stamps := l.pruneLocked(clientID, now)

	if len(stamps) < limit {
		l.windows[clientID] = append(stamps, now)
		return Decision{
			Allowed:   true,
			Remaining: limit - len(stamps) - 1,
		}
	}

	// Denied: the caller can retry once the oldest in-window stamp expires.
	wait := l.config.Window - now.Sub(stamps[0])
	seconds := int((wait + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	return Decision{
		Allowed:           false,
		Remaining:         0,
		RetryAfterSeconds: seconds,
	}
}

// Execute runs the operation if the caller is under its limit, otherwise
// returns a *RateLimitError without invoking op.
func (l *ClientLimiter) Execute(ctx context.Context, clientID string, op func(context.Context) error) error {
	decision := l.Check(clientID)
	if !decision.Allowed {
		return &RateLimitError{
			ClientID:          clientID,
			RetryAfterSeconds: decision.RetryAfterSeconds,
		}
	}
	return op(ctx)
}

// Count returns the caller's current in-window request count.
func (l *ClientLimiter) Count(clientID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pruneLocked(clientID, l.now()))
}

// pruneLocked drops timestamps older than the window and stores the pruned
// slice back, releasing the map entry entirely once it empties.
func (l *ClientLimiter) pruneLocked(clientID string, now time.Time) []time.Time {
	stamps := l.windows[clientID]
	cutoff := now.Add(-l.config.Window)

	keep := 0
	for keep < len(stamps) && !stamps[keep].After(cutoff) {
		keep++
	}
	stamps = stamps[keep:]

	if len(stamps) == 0 {
		delete(l.windows, clientID)
	} else {
		l.windows[clientID] = stamps
	}
	return stamps
}
