// Package cache stores rendered pattern artifacts keyed by content hashes.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// preview servers sharing one cache, and [NullCache] when caching is off.
// Keys come from a [Keyer] so that every backend uses the same layout, and
// [ScopedKeyer] separates tenants by prefix.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	// TTLInstance applies to deformed pattern specs. Instances are a pure
	// function of the template and the parameter values.
	TTLInstance = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered outputs (SVG, PNG, PDF, JSON, DOT).
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with expiring entries. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the data stored under key and whether it was found.
	// A missing or expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
