// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectMissing is returned when a key does not exist within the bucket.
// It signals metadata/object drift and must stay distinguishable from a
// plain metadata miss.
var ErrObjectMissing = errors.New("object not found in storage")

// ErrBucketMissing is returned when the bucket itself does not exist, a
// provisioning concern rather than a per-object one.
var ErrBucketMissing = errors.New("storage bucket does not exist")

// Storage is the interface for writing, reading, and deleting blobs.
type Storage interface {
	// Put streams data to the store under the given key. Keys are always
	// freshly generated, so overwrite-or-create semantics are fine.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Get returns the full payload stored under key. Missing keys yield
	// ErrObjectMissing.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes an object identified by key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error
	// Ping verifies the bucket is reachable.
	Ping(ctx context.Context) error
}
