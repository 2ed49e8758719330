// Package cache stores per-digest results across runs.
//
// The pipeline keys each archive's detected language set by the archive's
// content digest. A digest found in the cache is neither downloaded nor
// inspected again. Three backends implement [Cache]:
//
//   - [FileCache]: JSON files under the user's cache directory (default)
//   - [RedisCache]: a shared Redis instance, selected with a redis:// URL
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer] so that different registries or tenants can
// share one backend without collisions.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Options selects and configures a backend for [New].
type Options struct {
	// Disabled selects the NullCache.
	Disabled bool
	// URL selects the RedisCache when it starts with redis:// or rediss://.
	URL string
	// Dir is the FileCache directory, used when URL is empty.
	Dir string
}

// New returns the backend described by opts.
func New(ctx context.Context, opts Options) (Cache, error) {
	switch {
	case opts.Disabled:
		return NewNullCache(), nil
	case strings.HasPrefix(opts.URL, "redis://"), strings.HasPrefix(opts.URL, "rediss://"):
		return NewRedisCache(ctx, opts.URL)
	case opts.URL != "":
		return nil, ErrUnsupportedURL
	default:
		fc, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}
