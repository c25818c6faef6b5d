// Package cache provides the process-wide TTL cache that shields the
// rule pipeline from slow or unreliable upstream datasets.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e *entry[V]) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// TTL is a concurrency-safe key/value store with per-entry expiry.
// Expired entries behave as misses and are removed lazily on read.
// Concurrent misses on the same key are coalesced so that at most one
// upstream fetch is in flight per key.
type TTL[V any] struct {
	mu    sync.RWMutex
	items map[string]*entry[V]

	group singleflight.Group
	stats *Statistics
}

// NewTTL creates an empty cache. Injected once at startup and shared by
// all requests; there is no module-level instance.
func NewTTL[V any]() *TTL[V] {
	return &TTL[V]{
		items: make(map[string]*entry[V]),
		stats: NewStatistics(),
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *TTL[V]) Get(key string) (V, bool) {
	now := time.Now()

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		c.stats.Miss()
		return zero, false
	}

	if e.expired(now) {
		c.mu.Lock()
		// Double-check: a writer may have replaced the entry since the
		// read lock was dropped.
		if cur, still := c.items[key]; still && cur.expired(now) {
			delete(c.items, key)
			c.stats.Eviction()
			c.stats.UpdateSize(int64(len(c.items)))
		}
		c.mu.Unlock()

		var zero V
		c.stats.Miss()
		return zero, false
	}

	c.stats.Hit()
	return e.value, true
}

// peek reads key without touching the hit/miss counters. Used for the
// in-flight re-check so one logical miss is counted once per caller.
func (c *TTL[V]) peek(key string) (V, bool) {
	now := time.Now()

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || e.expired(now) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl. Non-positive ttl is a no-op.
func (c *TTL[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.items[key] = &entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
	size := int64(len(c.items))
	c.mu.Unlock()

	c.stats.Set()
	c.stats.UpdateSize(size)
}

// GetOrFetch returns the cached value for key, or runs fetch to obtain
// it. Concurrent callers missing on the same key share a single fetch
// and all receive its result. The hit flag reports whether this caller
// was served without running fetch itself. A fetch error is returned to
// every waiter and nothing is cached.
func (c *TTL[V]) GetOrFetch(key string, ttl time.Duration, fetch func() (V, error)) (value V, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	ran := false
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: an earlier waiter may have already
		// populated the entry.
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		ran = true
		fetched, err := fetch()
		if err != nil {
			return nil, err
		}
		c.Set(key, fetched, ttl)
		return fetched, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return v.(V), !ran, nil
}

// MarkRefreshed records a successful upstream fetch for source, for the
// health snapshot.
func (c *TTL[V]) MarkRefreshed(source string) {
	c.stats.MarkRefreshed(source)
}

// Clear drops every entry. Test helper and shutdown hook.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]*entry[V])
	c.mu.Unlock()
	c.stats.UpdateSize(0)
}

// Stats returns a read-only snapshot for the health collaborator.
func (c *TTL[V]) Stats() Snapshot {
	return c.stats.Snapshot()
}
