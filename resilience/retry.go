package resilience

import (
	"context"
	"time"
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// BaseDelay is the delay before the first retry; it doubles on each
	// subsequent attempt.
	// Default: 750ms
	BaseDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 5s
	MaxDelay time.Duration

	// RetryIf determines if an error should trigger a retry.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry implements bounded retry with capped exponential backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 750 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}

	return &Retry{config: config}
}

// Execute runs the operation with retry logic. The error from the last
// attempt is the one returned; no delay is waited after the final attempt.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	return r.execute(ctx, op, r.config.RetryIf)
}

func (r *Retry) execute(ctx context.Context, op func(context.Context) error, retryIf func(error) bool) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)

		if err == nil {
			return nil
		}

		lastErr = err

		if !retryIf(err) {
			return err
		}

		// Don't wait after the last attempt
		if attempt >= r.config.MaxAttempts {
			break
		}

		delay := r.delayFor(attempt)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// delayFor returns min(BaseDelay * 2^(attempt-1), MaxDelay).
func (r *Retry) delayFor(attempt int) time.Duration {
	delay := r.config.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= r.config.MaxDelay {
			return r.config.MaxDelay
		}
	}
	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}
	return delay
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
