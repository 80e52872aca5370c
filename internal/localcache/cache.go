// Package localcache provides the client-local durable key-value store
// backing the sync engine. Values are JSON-serialized strings; the
// store is capacity-limited the way browser localStorage is, and a Set
// that would exceed capacity fails with ErrQuotaExceeded.
package localcache

import "context"

// Well-known cache keys consumed by the sync engine.
const (
	KeyProducts    = "products"
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyContacts    = "contacts"
	KeySettings    = "siteSettings"
	KeyTheme       = "theme"
)

// Cache defines the interface for durable local cache implementations.
// All implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. Returns ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value, overwriting any previous one. Returns
	// ErrQuotaExceeded when the write would push the total stored
	// size over the configured capacity.
	Set(ctx context.Context, key string, value string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all stored keys.
	Keys(ctx context.Context) ([]string, error)

	// TotalSize returns the total character length of all stored
	// values plus keys, mirroring how browser quota accounting works.
	TotalSize(ctx context.Context) (int64, error)

	// Close releases any resources held by the cache.
	Close() error
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"

	// ErrQuotaExceeded indicates the write would exceed the configured
	// storage capacity.
	ErrQuotaExceeded Error = "storage quota exceeded"
)
