package cache

import (
	"context"
	"time"
)

// Cache is an abstraction layer for cache operations. Get reports a miss with
// found=false and a nil error.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}
