// Package health reports the gateway's operational state to the
// monitoring collaborator.
//
// A Checker probes one component; the Aggregator runs all registered
// checkers and folds their results into an overall status. The Collector
// produces a point-in-time Snapshot of the pipeline's internals: cache
// hit/miss counters, the phase of every circuit breaker, and the number
// of requests currently in flight. HTTP handlers expose both as liveness,
// readiness, and detail endpoints.
package health
