package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultSize = 10000

// TTL is a size-bounded cache whose entries expire a fixed duration after they are set.
// It is safe for concurrent use.
type TTL[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
	ttl time.Duration
}

// NewTTL creates a cache holding at most size entries for ttl each. size <= 0 uses a default bound.
func NewTTL[K comparable, V any](size int, ttl time.Duration) *TTL[K, V] {
	if size <= 0 {
		size = defaultSize
	}
	return &TTL[K, V]{
		lru: expirable.NewLRU[K, V](size, nil, ttl),
		ttl: ttl,
	}
}

// Get returns the value for key when present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

// Set stores the value and restarts its expiry.
func (c *TTL[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

// Delete drops the key.
func (c *TTL[K, V]) Delete(key K) {
	c.lru.Remove(key)
}

// Len returns the number of entries, including ones not yet swept.
func (c *TTL[K, V]) Len() int {
	return c.lru.Len()
}

// TTL returns the configured lifetime.
func (c *TTL[K, V]) TTL() time.Duration {
	return c.ttl
}
