package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrTimeout is returned when an operation times out. It wraps
	// context.DeadlineExceeded, so deadline-aware retry classifiers
	// treat a timed-out attempt as retryable.
	ErrTimeout = fmt.Errorf("resilience: operation timed out: %w", context.DeadlineExceeded)

	// ErrQueueClosed is returned when acquiring from a closed fair queue.
	ErrQueueClosed = errors.New("resilience: fair queue is closed")
)

// CircuitOpenError reports a rejected call against an open breaker. It
// carries the dependency name and the remaining cooldown so callers can
// surface actionable retry guidance.
//
// errors.Is(err, ErrCircuitOpen) matches.
type CircuitOpenError struct {
	Dependency string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("resilience: circuit open for %s, retry after %s", e.Dependency, e.RetryAfter)
	}
	return fmt.Sprintf("resilience: circuit open for %s", e.Dependency)
}

func (e *CircuitOpenError) Unwrap() error { return ErrCircuitOpen }

// RateLimitError reports a rejected call against an exhausted rate window.
//
// errors.Is(err, ErrRateLimitExceeded) matches.
type RateLimitError struct {
	ClientID          string
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("resilience: rate limit exceeded for %s, retry after %ds", e.ClientID, e.RetryAfterSeconds)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimitExceeded }
