package ports

import (
	"context"
	"time"
)

// Cache is a minimal TTL key/value store for whole serialized blobs. An
// expired entry is indistinguishable from an absent one.
type Cache interface {
	// Get returns the stored value and whether a live entry was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
