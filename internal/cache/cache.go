// Package cache provides a freshness-bounded in-memory key/value store.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Avishkar2004/8byte/internal/models"
)

// Key identifies one cached fact: (kind, symbol).
type Key struct {
	Kind   models.FactKind
	Symbol string
}

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache is a concurrency-safe store with per-entry expiry.
// Expiry is lazy: an expired entry reads as a miss and is reclaimed
// on the next Get, Set, or sweep. The cache never errors.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[Key]entry
	cap     int // 0 = unbounded
	now     func() time.Time
}

// Option configures the cache.
type Option func(*TTLCache)

// WithCapacity bounds the number of live entries. When full, the entry
// closest to expiry is evicted to make room.
func WithCapacity(n int) Option {
	return func(c *TTLCache) {
		c.cap = n
	}
}

// WithClock injects a clock for testing.
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) {
		c.now = now
	}
}

// New creates an empty TTLCache.
func New(opts ...Option) *TTLCache {
	c := &TTLCache{
		entries: make(map[Key]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key if present and unexpired.
func (c *TTLCache) Get(key Key) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		// Expired. Reclaim under write lock, re-checking in case of a
		// concurrent Set for the same key.
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, expiring exactly ttl from now.
// Same-key races resolve last-writer-wins.
func (c *TTLCache) Set(key Key, value any, ttl time.Duration) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.cap > 0 && len(c.entries) >= c.cap {
		c.evictLocked(now)
	}

	c.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}
}

// Delete removes key regardless of expiry.
func (c *TTLCache) Delete(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of unexpired entries.
func (c *TTLCache) Len() int {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

// evictLocked frees one slot: expired entries first, otherwise the
// entry closest to expiry. Caller holds the write lock.
func (c *TTLCache) evictLocked(now time.Time) {
	var victim Key
	var victimExpiry time.Time
	found := false

	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			return
		}
		if !found || e.expiresAt.Before(victimExpiry) {
			victim, victimExpiry, found = k, e.expiresAt, true
		}
	}

	if found {
		delete(c.entries, victim)
	}
}

// StartSweeper launches a background goroutine that periodically removes
// expired entries. Not required for correctness (Get treats expired
// entries as misses) but reclaims memory for churned keys. The sweeper
// stops when ctx is cancelled.
func (c *TTLCache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *TTLCache) sweep() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
