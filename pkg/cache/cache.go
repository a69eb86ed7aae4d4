// Package cache provides byte-level caching for rendered artifacts and
// per-user learning state.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// servers that share state between instances, and [NullCache] when caching is
// disabled. [WithHooks] reports hits, misses, and writes to the registered
// observability hooks.
//
// Keys come from a [Keyer] so that every backend uses the same namespace
// layout. Keys start with a short type name ("artifact", "user") followed by
// a colon; the hooks report that type name.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/conceptmap/pkg/observability"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. A missing or expired key is a miss
	// (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// hooked reports cache traffic to the observability hooks.
type hooked struct {
	Cache
}

// WithHooks wraps c so that every Get and Set is reported to
// [observability.Cache]. Clear is forwarded when c supports it.
func WithHooks(c Cache) Cache {
	return &hooked{Cache: c}
}

func (h *hooked) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := h.Cache.Get(ctx, key)
	if err != nil {
		return data, ok, err
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, keyType(key))
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
	}
	return data, ok, nil
}

func (h *hooked) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := h.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func (h *hooked) Clear(ctx context.Context) (int, error) {
	if c, ok := h.Cache.(Clearer); ok {
		return c.Clear(ctx)
	}
	return 0, nil
}

// keyType returns the namespace of key, skipping any scope prefix.
func keyType(key string) string {
	parts := strings.Split(key, ":")
	for _, p := range parts {
		switch p {
		case keyTypeArtifact, keyTypeUser:
			return p
		}
	}
	return parts[0]
}
