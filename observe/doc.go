// Package observe provides structured logging, metrics, and tracing for the
// gateway pipeline.
//
// An Observer bundles an OpenTelemetry tracer, a meter, and a JSON logger
// behind one configuration. Metrics covers the pipeline counters (requests,
// cache lookups, breaker transitions, retries); Tracer manages per-request
// spans; the logger redacts credential-bearing fields.
package observe
