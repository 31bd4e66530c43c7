// Package cache provides an in-memory time-to-live cache with lazy eviction.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long a cached rate payload stays fresh.
const DefaultTTL = 5 * time.Minute

// Entry is a cached value together with the time it was stored.
type Entry[T any] struct {
	Value    T
	StoredAt time.Time
}

// TTL caches values for a fixed time-to-live. Expired entries are evicted
// on the read that observes them; there is no background sweeping.
type TTL[T any] struct {
	ttl     time.Duration
	now     func() time.Time
	entries map[string]Entry[T]
	mu      sync.Mutex
}

// New creates a TTL cache. A non-positive ttl falls back to DefaultTTL.
func New[T any](ttl time.Duration) *TTL[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry[T]),
	}
}

// WithClock replaces the time source. Used by tests.
func (c *TTL[T]) WithClock(now func() time.Time) *TTL[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// TTL returns the configured time-to-live.
func (c *TTL[T]) TTL() time.Duration {
	return c.ttl
}

// Put stores value under key, replacing any previous entry and resetting
// its age.
func (c *TTL[T]) Put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry[T]{Value: value, StoredAt: c.now()}
}

// Get returns the value for key while now - storedAt <= ttl.
func (c *TTL[T]) Get(key string) (T, bool) {
	entry, ok := c.entry(key)
	return entry.Value, ok
}

// GetEntry is like Get but also reports when the value was stored.
func (c *TTL[T]) GetEntry(key string) (Entry[T], bool) {
	return c.entry(key)
}

// Delete removes key from the cache.
func (c *TTL[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired ones included.
func (c *TTL[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL[T]) entry(key string) (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Entry[T]{}, false
	}
	if c.now().Sub(entry.StoredAt) > c.ttl {
		delete(c.entries, key)
		return Entry[T]{}, false
	}
	return entry, true
}
