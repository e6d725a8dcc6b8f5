// Package cache provides a small expiring in-memory cache.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTL is a map whose entries expire after a fixed duration.
// A zero or negative ttl disables caching.
type TTL[K comparable, V any] struct {
	mu    sync.RWMutex
	store map[K]entry[V]
	ttl   time.Duration
	now   func() time.Time
}

func NewTTL[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	return &TTL[K, V]{
		store: make(map[K]entry[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the cached value if present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.store[key]
	if !ok || !c.now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *TTL[K, V]) Set(key K, value V) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.store[key] = entry[V]{value: value, expires: now.Add(c.ttl)}

	// Drop expired entries once the map grows.
	if len(c.store) > 1024 {
		for k, e := range c.store {
			if !now.Before(e.expires) {
				delete(c.store, k)
			}
		}
	}
}

// Len returns the number of stored entries, including expired ones not yet dropped.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
