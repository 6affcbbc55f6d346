// Package cache stores derived editor state between sessions.
//
// The editing core itself persists nothing. Hosts use this package to keep
// the layout position cache and the collapsed set of a graph file, so that
// reopening a file shows the canvas exactly as it was left.
//
// # Backends
//
//   - [FileCache]: one JSON file per key under a directory, the CLI default
//   - [RedisCache]: shared cache for several editor instances
//   - [MemoryCache]: process-local, for tests and one-shot commands
//   - [NullCache]: stores nothing, used when caching is disabled
//
// # Keys
//
// A [Keyer] derives keys from the graph identity and the layout options, so
// positions computed by one engine or viewport size never leak into another.
// [ScopedKeyer] prefixes every key for per-user isolation on a shared Redis.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/dagedit/pkg/observability"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// GetJSON loads the value stored under key into v. It returns ErrCacheMiss
// when the key is absent. keyType labels the lookup for the cache hooks.
func GetJSON(ctx context.Context, c Cache, keyType, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		// Unreadable entries are dropped and reported as a miss.
		_ = c.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return ErrCacheMiss
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return nil
}

// SetJSON stores v as JSON under key.
func SetJSON(ctx context.Context, c Cache, keyType, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}
