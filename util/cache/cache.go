// Package cache is a keyed in-memory store with per-entry expiry,
// used for login tokens and other values shared between extractors.
package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	items *ttlcache.Cache[string, any]
	group singleflight.Group
}

func New() *Cache {
	return &Cache{
		// a hit must not push a token's expiry further out
		items: ttlcache.New(ttlcache.WithDisableTouchOnHit[string, any]()),
	}
}

// Get returns the value stored under key if it has not expired.
func (c *Cache) Get(key string) (any, bool) {
	item := c.items.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false
	}
	return item.Value(), true
}

// Set stores value under key. A ttl <= 0 never expires.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	c.items.Set(key, value, ttl)
}

func (c *Cache) Delete(key string) {
	c.items.Delete(key)
}

func (c *Cache) Len() int {
	c.items.DeleteExpired()
	return c.items.Len()
}

// Memoize returns the cached value for key, or calls fn and
// caches its result for ttl. Concurrent callers for the same key
// share one call of fn. Errors are not cached.
func Memoize[T any](c *Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	if typed, ok := lookup[T](c, key); ok {
		return typed, nil
	}
	value, err, _ := c.group.Do(key, func() (any, error) {
		if typed, ok := lookup[T](c, key); ok {
			return typed, nil
		}
		value, err := fn()
		if err != nil {
			return nil, err
		}
		c.Set(key, value, ttl)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

func lookup[T any](c *Cache, key string) (T, bool) {
	var zero T
	value, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	return typed, ok
}
