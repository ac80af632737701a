// Package storage defines the blob store port and its backends. The store is
// pure storage keyed by opaque storage keys; all lifecycle policy lives in
// the registry.
package storage

import (
	"context"
	"io"
)

// BlobStore is the object store port.
type BlobStore interface {
	// Put writes exactly size bytes from r under key.
	Put(ctx context.Context, key string, r io.Reader, size int64) error

	// Get opens the blob for streaming. Returns common.ErrNotFound for a
	// missing key, common.ErrStorage for backend failures.
	Get(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// Delete removes the blob. Deleting a missing key is a no-op so that
	// retries and sweeps stay idempotent.
	Delete(ctx context.Context, key string) error
}
