package query

import (
	"context"
	"time"
)

// Cache is an optional result cache for derived analytics. It is purely
// advisory: a miss or any cache failure falls back to recomputation,
// which remains the ground truth.
type Cache interface {
	// Get returns the cached payload for key, or ok=false on miss or
	// cache failure.
	Get(ctx context.Context, key string) (payload []byte, ok bool)

	// Set stores a payload under key with a TTL. Failures are ignored.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration)
}
