// Package upstream is the REST client for the legal-research data source.
//
// The client is a thin pass-through: it maps gateway operations to API
// endpoints, injects the upstream credential, and decodes JSON. It does no
// retrying, caching, or breaking of its own; the gateway composes those
// around it. Errors are classified so the caller can tell terminal
// rejections (4xx) from retryable faults (5xx, network, timeout).
package upstream
