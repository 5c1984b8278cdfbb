// Package cache provides thread-safe caching utilities with time-based expiration.
package cache

import (
	"sync"
	"time"
)

// DefaultMaxEntries bounds a cache created with a non-positive size.
const DefaultMaxEntries = 1024

type entry[V any] struct {
	value  V
	stored time.Time
}

// TTLCache is a thread-safe, size-bounded cache whose entries expire ttl
// after they were stored. When the cache is full the oldest entry is evicted.
// A TTL of zero or less disables caching entirely.
type TTLCache[K comparable, V any] struct {
	mu         sync.RWMutex
	data       map[K]entry[V]
	order      []K
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	hits, misses uint64
}

// Stats reports cache effectiveness.
type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// New creates a new TTLCache with the given TTL and capacity.
func New[K comparable, V any](ttl time.Duration, maxEntries int) *TTLCache[K, V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &TTLCache[K, V]{
		data:       make(map[K]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Enabled returns false when the TTL disables caching.
func (c *TTLCache[K, V]) Enabled() bool {
	return c.ttl > 0
}

// Get retrieves a value from the cache.
// Returns the value and ok=true if the key exists and has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok || c.expiredLocked(e) {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Set stores a value in the cache, evicting the oldest entries if needed.
func (c *TTLCache[K, V]) Set(key K, value V) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists {
		c.order = append(c.order, key)
	}
	c.data[key] = entry[V]{value: value, stored: c.now()}

	for len(c.data) > c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.data, oldest)
	}
}

// expiredLocked MUST be called with the lock held.
func (c *TTLCache[K, V]) expiredLocked(e entry[V]) bool {
	return c.now().Sub(e.stored) >= c.ttl
}

// Prune removes expired entries and returns how many were dropped.
func (c *TTLCache[K, V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.order[:0]
	dropped := 0
	for _, k := range c.order {
		if c.expiredLocked(c.data[k]) {
			delete(c.data, k)
			dropped++
			continue
		}
		kept = append(kept, k)
	}
	c.order = kept
	return dropped
}

// Invalidate clears all cached data.
func (c *TTLCache[K, V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[K]entry[V])
	c.order = nil
}

// Len returns the number of items currently in the cache.
// This does not check expiration - it returns the count even if expired.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Stats returns hit and miss counters.
func (c *TTLCache[K, V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Entries: len(c.data), Hits: c.hits, Misses: c.misses}
}
