// Package middleware composes the cross-cutting steps that run around
// every gateway operation.
//
// A Chain is an ordered slice of Middleware, composed onion-style: step 1
// wraps step 2 wraps the core operation, and errors unwind back out through
// each step unmodified. The canonical stack runs authentication first, then
// input sanitization, then rate limiting, then observation. Sanitization
// sits before the rate limiter so malformed requests are rejected without
// charging the caller's quota, and after authentication so unauthenticated
// callers cannot probe either.
package middleware
