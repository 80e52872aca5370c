package localcache

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// MemoryCache is a thread-safe in-memory Cache implementation with the
// same capacity semantics as the SQLite backend. It is the default in
// tests and in ephemeral (no cache path configured) runs.
type MemoryCache struct {
	mu       sync.RWMutex
	data     map[string]string
	capacity int64 // Max total character length (0 = unlimited)
	closed   atomic.Bool
}

// NewMemoryCache creates an empty in-memory cache. capacity limits the
// total stored character length; 0 means unlimited.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		data:     make(map[string]string),
		capacity: capacity,
	}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	if c.closed.Load() {
		return "", ErrCacheClosed
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return value, nil
}

// Set stores a value, enforcing the capacity limit.
func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity > 0 {
		var existing int64
		if old, ok := c.data[key]; ok {
			existing = int64(len(key) + len(old))
		}
		if c.totalLocked()-existing+int64(len(key)+len(value)) > c.capacity {
			return ErrQuotaExceeded
		}
	}

	c.data[key] = value
	return nil
}

// Delete removes a key from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Keys returns all stored keys in sorted order.
func (c *MemoryCache) Keys(_ context.Context) ([]string, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.data))
	for key := range c.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// TotalSize returns the total character length of all keys and values.
func (c *MemoryCache) TotalSize(_ context.Context) (int64, error) {
	if c.closed.Load() {
		return 0, ErrCacheClosed
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalLocked(), nil
}

func (c *MemoryCache) totalLocked() int64 {
	var total int64
	for key, value := range c.data {
		total += int64(len(key) + len(value))
	}
	return total
}

// Close marks the cache closed; further operations fail with
// ErrCacheClosed.
func (c *MemoryCache) Close() error {
	c.closed.Store(true)
	return nil
}
