package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilCache   = errors.New("cache: cache is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Stats contains cache counters for the health surface.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// Cache is the interface for caching upstream responses.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: Get never errors; it returns (nil, false) on miss. Set errors
//     describe why a value was not stored; callers log and continue, they
//     never fail the request over them.
type Cache interface {
	// Get retrieves a cached value. Returns (nil, false) on miss or expiry.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL. TTL<=0 means no caching.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cached value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error

	// Stats returns current counters.
	Stats() Stats
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// Disabled returns a cache that stores nothing: Get always misses and Set
// is a no-op. Callers hold it in place of a real cache when caching is
// turned off, without special-casing.
func Disabled() Cache {
	return disabledCache{}
}

type disabledCache struct{}

func (disabledCache) Get(context.Context, string) ([]byte, bool)               { return nil, false }
func (disabledCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (disabledCache) Delete(context.Context, string) error                     { return nil }
func (disabledCache) Stats() Stats                                             { return Stats{} }

var _ Cache = disabledCache{}
