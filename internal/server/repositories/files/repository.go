// Package files implements the lifecycle registry for stored objects: the
// metadata rows that decide whether a ciphertext blob may still be served
// and when it must be destroyed.
package files

import (
	"context"
	"time"

	"github.com/zeroshare/zeroshare/internal/server/models"
)

// Repository is the lifecycle registry port.
//
// TryConsume is the single serialization point for concurrent downloads of
// the same id: implementations must perform the read-check-increment as one
// indivisible operation, so that with MaxDownloads=1 exactly one concurrent
// caller is admitted and the rest are denied.
type Repository interface {
	// Create inserts a new Active record. Returns common.ErrAlreadyExists
	// if the id is already taken.
	Create(ctx context.Context, f *models.FileObject) error

	// TryConsume atomically increments the download counter iff the object
	// is still servable at the given time, returning the post-increment
	// state. Denials are common.ErrNotFound, common.ErrExpired or
	// common.ErrAlreadyConsumed.
	TryConsume(ctx context.Context, id string, now time.Time) (*models.FileObject, error)

	// DeleteSpent removes the record only if it is still expired or
	// consumed at delete time. Reports whether a row was removed; deleting
	// an absent or still-servable record is not an error.
	DeleteSpent(ctx context.Context, id string, now time.Time) (bool, error)

	// SelectPurgeable lists records that are expired or consumed at the
	// given time, up to limit rows, for the sweeper.
	SelectPurgeable(ctx context.Context, now time.Time, limit int) ([]*models.FileObject, error)
}
