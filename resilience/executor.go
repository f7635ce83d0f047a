package resilience

import (
	"context"
	"errors"
	"time"
)

// Executor composes the resilience patterns around a single upstream
// dependency's calls.
type Executor struct {
	breaker   *CircuitBreaker
	retry     *Retry
	fairQueue *FairQueue
	timeout   *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.breaker = cb
	}
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithFairQueue adds outbound fair-queue rate limiting to the executor.
func WithFairQueue(q *FairQueue) ExecutorOption {
	return func(e *Executor) {
		e.fairQueue = q
	}
}

// WithTimeout adds a per-call timeout to the executor.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
	}
}

// Execute runs the operation through all configured resilience patterns.
//
// The nesting, outermost first, is:
// 1. Fair queue - FIFO admission under the outbound window budget
// 2. Retry - each attempt goes back through the breaker
// 3. Circuit breaker - rejects attempts while the dependency is unhealthy
// 4. Timeout - bounds each individual call
//
// The retry layer never retries a circuit-open or rate-limit rejection,
// regardless of the configured RetryIf.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	execute := op

	// Wrap with timeout (innermost)
	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}

	// Wrap with circuit breaker so every attempt consults it
	if e.breaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.breaker.Execute(ctx, inner)
		}
	}

	// Wrap with retry
	if e.retry != nil {
		inner := execute
		retryIf := func(err error) bool {
			if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrRateLimitExceeded) {
				return false
			}
			return e.retry.config.RetryIf(err)
		}
		execute = func(ctx context.Context) error {
			return e.retry.execute(ctx, inner, retryIf)
		}
	}

	// Wrap with fair queue (outermost)
	if e.fairQueue != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.fairQueue.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}
