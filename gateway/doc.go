// Package gateway composes the full request pipeline.
//
// Every inbound call gets a request id and an in-flight tracker entry,
// then passes through the middleware chain (authenticate, sanitize, rate
// limit, observe). On a cache miss the core operation runs under the
// resilience executor: outbound fair queue, bounded retry, per-dependency
// circuit breaker, and a hard timeout around the upstream client.
// Concurrent misses for the same key are collapsed into one upstream
// flight. Shutdown runs prioritized hooks: intake stops first, in-flight
// requests drain, then caches and telemetry flush.
package gateway
