package detector

import (
	"context"
	"sync/atomic"
)

// Context keys for per-image detection options
type contextKey string

const cacheHitKey contextKey = "cacheHit"

// WithCacheHitFlag returns a context that records whether a Caching detector
// served the request from its store.
func WithCacheHitFlag(ctx context.Context) (context.Context, *atomic.Bool) {
	hit := &atomic.Bool{}
	return context.WithValue(ctx, cacheHitKey, hit), hit
}

// markCacheHit flags the hit marker in ctx, if any
func markCacheHit(ctx context.Context) {
	if hit, ok := ctx.Value(cacheHitKey).(*atomic.Bool); ok {
		hit.Store(true)
	}
}
