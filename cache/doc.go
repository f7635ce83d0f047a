// Package cache provides a bounded response cache for upstream results.
//
// It provides a Cache interface with an in-memory TTL+LRU implementation,
// deterministic key derivation from operation parameters, and TTL policies.
package cache
