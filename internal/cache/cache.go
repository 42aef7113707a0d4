package cache

import (
	"context"
	"errors"
	"time"
)

// Store is a TTL'd key-value cache. The targets read path uses it to
// short-circuit repeated list fetches; mutations invalidate the key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

var (
	// ErrMiss is returned when the key is absent or expired
	ErrMiss = errors.New("cache: miss")
	// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
	ErrCacheDisabled = errors.New("cache: disabled")
)
