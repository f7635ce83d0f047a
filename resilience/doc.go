// Package resilience provides the failure-handling patterns every upstream
// call passes through.
//
// # Patterns
//
//   - Circuit Breaker: stops calling a dependency after repeated
//     consecutive failures, admitting a single trial call once the
//     cooldown elapses. A Registry keeps one breaker per dependency name.
//
//   - Retry: bounded attempts with capped exponential backoff; the error
//     from the final attempt is the one propagated.
//
//   - Client Limiter: sliding-window request counting per caller
//     identity, with retry-after guidance on rejection.
//
//   - Fair Queue: FIFO admission of outbound calls under a rolling window
//     budget, so a burst never reorders or starves earlier callers.
//
//   - Timeout: bounds each individual outbound call.
//
// # Usage
//
// Patterns can be used independently or composed:
//
//	registry := resilience.NewRegistry(resilience.CircuitBreakerConfig{
//	    MaxFailures:  5,
//	    ResetTimeout: 30 * time.Second,
//	})
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    BaseDelay:   750 * time.Millisecond,
//	    MaxDelay:    5 * time.Second,
//	})
//
//	executor := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(registry.Get("research-api")),
//	    resilience.WithRetry(retry),
//	    resilience.WithTimeout(10*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return callUpstream(ctx)
//	})
package resilience
