// Package sweeper runs the periodic reconciliation task that purges expired
// and consumed objects the request-driven deletion path missed. It shares
// nothing with the request handlers except the registry's conditional
// primitives, so it stays correct even when it runs in another process.
package sweeper

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/zeroshare/zeroshare/internal/logging"
	"github.com/zeroshare/zeroshare/internal/server/repositories/files"
	"github.com/zeroshare/zeroshare/internal/server/storage"
)

// batchSize caps how many rows one pass considers.
const batchSize = 500

// Sweeper purges expired and consumed objects on a fixed interval.
type Sweeper struct {
	repo     files.Repository
	store    storage.BlobStore
	interval time.Duration
	logger   logging.Logger

	// now is a seam for expiry tests.
	now func() time.Time
}

// New constructs a sweeper over the given registry and blob store.
func New(repo files.Repository, store storage.BlobStore, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		store:    store,
		interval: interval,
		logger:   logger.With("module", "sweeper"),
		now:      time.Now,
	}
}

// Run loops until the context is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "sweeper started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "sweeper stopped")
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				s.logger.Error(ctx, "sweep failed", "error", err.Error())
			} else if n > 0 {
				s.logger.Info(ctx, "sweep completed", "purged", n)
			}
		}
	}
}

// Sweep performs one reconciliation pass and reports how many objects were
// fully purged. It is idempotent: blobs already gone are fine, and records
// are removed with the same conditional delete the request path uses, so a
// delayed sweep can never take out a servable object.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()

	candidates, err := s.repo.SelectPurgeable(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, obj := range candidates {
		backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := s.store.Delete(ctx, obj.StorageKey); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			// keep the record so the next pass retries the blob
			s.logger.Warn(ctx, "blob deletion failed, will retry next sweep", "id", obj.ID, "error", err.Error())
			continue
		}

		removed, err := s.repo.DeleteSpent(ctx, obj.ID, now)
		if err != nil {
			s.logger.Warn(ctx, "record deletion failed", "id", obj.ID, "error", err.Error())
			continue
		}
		if removed {
			purged++
			s.logger.Debug(ctx, "object purged", "id", obj.ID)
		}
	}

	return purged, nil
}
