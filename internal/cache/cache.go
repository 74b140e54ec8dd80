// Package cache memoises calculation results keyed by scenario. Backends are
// interchangeable; a failing backend never fails a calculation.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("cache closed")

// Cache stores opaque values under string keys.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A ttl of zero keeps the entry until it is
	// evicted by the backend.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
