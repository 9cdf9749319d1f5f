// Package cache provides the byte cache used for fetched payloads and
// rendered artifacts.
//
// Three backends implement [Cache]:
//   - [FileCache] stores entries as JSON files, for the CLI.
//   - [RedisCache] stores entries in Redis, for servers sharing a cache.
//   - [NullCache] stores nothing, for --no-cache and tests.
//
// Keys come from a [Keyer] so every component builds them the same way.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	// TTLPayload is how long a fetched prerequisite payload stays fresh.
	TTLPayload = 24 * time.Hour

	// TTLArtifact is how long a rendered artifact stays fresh. Artifacts
	// are keyed by content hash, so they never go stale; the TTL only
	// bounds disk use.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (hit == false) and not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
