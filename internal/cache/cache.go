// Package cache stores generated meshes between runs, keyed by a hash of
// everything that went into building them.
//
// Three backends share the Cache interface:
//   - FileCache: one JSON entry per key under a local directory (CLI use)
//   - RedisCache: a shared Redis instance (server use)
//   - NullCache: never stores anything
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. An expired or
	// unreadable entry is reported as a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
