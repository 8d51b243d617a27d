package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by [Cache.Get] when the key is absent. Callers
// treat a miss as a signal to rebuild from the store; the cache is never
// authoritative.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the capability the features depend on. It is injected explicitly
// rather than reached through a package-level client.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
