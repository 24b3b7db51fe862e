// Package fonts loads font binaries from disk or over HTTP for the embed
// renderer. Loads are memoized per cache key: a successful load is kept for
// the life of the cache, concurrent loads of one key share a single request,
// and a failed load is forgotten so a later call can retry.
package fonts

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc performs the underlying I/O for one cache key.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Cache memoizes font payloads by key. The zero value is ready to use.
type Cache struct {
	mu    sync.RWMutex
	data  map[string][]byte
	group singleflight.Group
}

func NewCache() *Cache {
	return &Cache{}
}

// Load returns the cached payload for key, calling fetch at most once per key
// across concurrent callers. The shared fetch runs detached from the caller's
// cancellation so one abandoned caller cannot fail the others.
func (c *Cache) Load(ctx context.Context, key string, fetch FetchFunc) ([]byte, error) {
	if data, ok := c.get(key); ok {
		return data, nil
	}

	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		if data, ok := c.get(key); ok {
			return data, nil
		}
		data, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.data == nil {
			c.data = make(map[string][]byte)
		}
		c.data[key] = data
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.data[key]
	return data, ok
}

// Len returns the number of cached payloads.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear drops every cached payload. Intended for tests.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
}
