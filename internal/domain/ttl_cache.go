package domain

import (
	"context"
	"sync"
	"time"
)

// TTLCache is a string-keyed cache whose entries expire a fixed
// duration after they are written. Expired entries are evicted lazily
// on lookup; CleanExpired sweeps eagerly to bound memory when lookups
// are infrequent.
type TTLCache[V any] struct {
	mu      sync.Mutex
	entries map[string]ttlEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

type ttlEntry[V any] struct {
	value  V
	expiry time.Time
}

// NewTTLCache creates a cache whose entries live for ttl after Set.
func NewTTLCache[V any](ttl time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		entries: make(map[string]ttlEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set stores value under key, unconditionally overwriting any existing
// entry and resetting its expiry.
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ttlEntry[V]{
		value:  value,
		expiry: c.now().Add(c.ttl),
	}
}

// Get returns the live value stored under key. A lookup that finds an
// expired entry removes it.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(entry.expiry) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Delete removes key if present.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]ttlEntry[V])
}

// Size returns the current entry count. Entries past their expiry but
// not yet swept still count; Size is exact only immediately after
// CleanExpired.
func (c *TTLCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CleanExpired removes every entry whose expiry has passed.
func (c *TTLCache[V]) CleanExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

// StartSweeper periodically calls CleanExpired until ctx is done.
// Correctness does not depend on the sweep; it only bounds memory.
func (c *TTLCache[V]) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.CleanExpired()
			}
		}
	}()
}
