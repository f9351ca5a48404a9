// Package cache provides a small explicit TTL cache used to memoize lookup
// results within one pipeline run. Entries carry their own store time and
// TTL; expiry is checked on read. There is no background eviction — the
// tools are one-shot processes and the cache dies with them.
package cache

import (
	"errors"
	"sync"
	"time"
)

// ErrCacheMiss is returned when a key is absent or its entry has expired.
var ErrCacheMiss = errors.New("cache miss")

// Store is the cache abstraction consumed by the aggregator. The in-memory
// TTLCache is the only implementation; the interface exists so a networked
// cache could substitute without touching callers.
type Store interface {
	Get(key string) (string, error)
	Put(key string, value string, ttl time.Duration)
}

type entry struct {
	value    string
	storedAt time.Time
	ttl      time.Duration // 0 = no expiry
}

func (e entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.storedAt) > e.ttl
}

// TTLCache is an in-memory Store with per-entry TTL.
type TTLCache struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time // swapped in tests
}

// New creates an empty TTLCache.
func New() *TTLCache {
	return &TTLCache{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// Get returns the value for key, or ErrCacheMiss when the key is absent or
// expired. Expired entries are removed on access.
func (c *TTLCache) Get(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	if item.expired(c.now()) {
		delete(c.data, key)
		return "", ErrCacheMiss
	}
	return item.value, nil
}

// Put stores value under key. ttl <= 0 keeps the entry for the process
// lifetime.
func (c *TTLCache) Put(key string, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl < 0 {
		ttl = 0
	}
	c.data[key] = entry{value: value, storedAt: c.now(), ttl: ttl}
}

// Len reports the number of stored entries, including not-yet-collected
// expired ones.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
