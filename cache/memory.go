package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryConfig configures the in-memory cache.
type MemoryConfig struct {
	// MaxEntries is the capacity bound. When a Set would exceed it, the
	// least recently accessed entry is evicted first.
	// Default: 1000
	MaxEntries int
}

// MemoryCache is an in-memory cache with TTL expiry and LRU eviction.
type MemoryCache struct {
	config MemoryConfig

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently accessed
	hits    uint64
	misses  uint64
	evicted uint64

	now func() time.Time
}

type memoryEntry struct {
	key        string
	value      []byte
	storedAt   time.Time
	expiresAt  time.Time
	lastAccess time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache(config MemoryConfig) *MemoryCache {
	// Apply defaults
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1000
	}

	return &MemoryCache{
		config:  config,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Get retrieves a value from the cache. Returns (nil, false) on miss or
// expiry; an expired entry is removed lazily during the lookup.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*memoryEntry)
	now := c.now()

	// An entry at or past its expiry must never be served.
	if !now.Before(entry.expiresAt) {
		c.removeLocked(elem)
		c.misses++
		return nil, false
	}

	entry.lastAccess = now
	c.order.MoveToFront(elem)
	c.hits++
	return entry.value, true
}

// Set stores a value with the given TTL. TTL<=0 means don't cache.
// At capacity, the least recently accessed entry is evicted first.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.storedAt = now
		entry.expiresAt = now.Add(ttl)
		entry.lastAccess = now
		c.order.MoveToFront(elem)
		return nil
	}

	if len(c.entries) >= c.config.MaxEntries {
		c.evictOldestLocked()
	}

	elem := c.order.PushFront(&memoryEntry{
		key:        key,
		value:      value,
		storedAt:   now,
		expiresAt:  now.Add(ttl),
		lastAccess: now,
	})
	c.entries[key] = elem

	return nil
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}
	return nil
}

// Stats returns current cache counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evicted,
		Size:      len(c.entries),
	}
}

// Sweep removes all expired entries and returns how many were reclaimed.
// Expiry is otherwise handled lazily on Get; Sweep exists so long-idle
// entries do not pin memory between lookups.
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0

	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		entry := elem.Value.(*memoryEntry)
		if !now.Before(entry.expiresAt) {
			c.removeLocked(elem)
			removed++
		}
		elem = prev
	}

	return removed
}

func (c *MemoryCache) evictOldestLocked() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	c.removeLocked(elem)
	c.evicted++
}

func (c *MemoryCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	c.order.Remove(elem)
	delete(c.entries, entry.key)
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
