// Package cache provides an ephemeral key-value store with per-entry expiry.
// It is a lookup accelerator only: callers must treat every operation as
// advisory and keep working when the cache is unavailable.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
// Absence does not imply the underlying record does not exist.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the interface for the key→value lookup cache.
type Cache interface {
	// Set stores value under key with the given time-to-live.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value stored under key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (string, error)
	// Delete removes the entry for key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error
	// Ping verifies the cache is reachable.
	Ping(ctx context.Context) error
}
