// Package services implements the server-side application services. The
// share service orchestrates the lifecycle registry and the blob store for
// uploads and downloads; it never sees plaintext or keys, only ciphertext
// packages and opaque ids.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/zeroshare/zeroshare/internal/common"
	"github.com/zeroshare/zeroshare/internal/logging"
	sc "github.com/zeroshare/zeroshare/internal/server/config"
	"github.com/zeroshare/zeroshare/internal/server/models"
	"github.com/zeroshare/zeroshare/internal/server/repositories/files"
	"github.com/zeroshare/zeroshare/internal/server/storage"
)

// idCreateAttempts bounds the regenerate-and-retry loop on id collisions.
// Collisions are vanishingly unlikely with UUIDs but are checked, not assumed.
const idCreateAttempts = 3

// ShareService is the access controller for uploads and downloads.
type ShareService struct {
	repo   files.Repository
	store  storage.BlobStore
	config *sc.Config
	logger logging.Logger

	// now is a seam for expiry tests.
	now func() time.Time
}

// NewShareService wires the registry, blob store and config together.
func NewShareService(repo files.Repository, store storage.BlobStore, config *sc.Config, logger logging.Logger) *ShareService {
	return &ShareService{
		repo:   repo,
		store:  store,
		config: config,
		logger: logger.With("module", "share_service"),
		now:    time.Now,
	}
}

// Upload stores a ciphertext package and registers its lifecycle record.
// Either both the blob and the record exist afterwards, or neither does:
// the blob is written first and removed again if the record cannot be
// created. Returns the opaque object id.
func (s *ShareService) Upload(ctx context.Context, r io.Reader, size int64, name, mimeType string) (string, error) {
	if size > s.config.MaxUploadSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", common.ErrSizeExceeded, size, s.config.MaxUploadSize)
	}

	storageKey := uuid.NewString() + path.Ext(name)
	if err := s.store.Put(ctx, storageKey, r, size); err != nil {
		return "", err
	}

	now := s.now()
	obj := &models.FileObject{
		StorageKey:   storageKey,
		OriginalName: name,
		SizeBytes:    size,
		MimeType:     mimeType,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.config.FileExpiry),
		MaxDownloads: s.config.MaxDownloads,
	}

	err := retry.Do(ctx, retry.WithMaxRetries(idCreateAttempts, retry.NewConstant(time.Millisecond)), func(ctx context.Context) error {
		obj.ID = uuid.NewString()
		err := s.repo.Create(ctx, obj)
		if errors.Is(err, common.ErrAlreadyExists) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		// no partial state: the blob must not outlive a failed record
		if delErr := s.store.Delete(ctx, storageKey); delErr != nil {
			s.logger.Error(ctx, "orphan blob cleanup failed", "storage_key", storageKey, "error", delErr.Error())
		}
		return "", fmt.Errorf("creating file record: %w", err)
	}

	s.logger.Info(ctx, "object uploaded", "id", obj.ID, "size", size, "expires_at", obj.ExpiresAt)
	return obj.ID, nil
}

// Download admits the request through the registry's atomic transition and
// opens the blob for streaming. The admission and the byte transfer are
// separate steps: a storage failure after admission surfaces as ErrStorage
// and the consumed slot stays spent (the sweeper will reclaim the record).
func (s *ShareService) Download(ctx context.Context, id string) (*models.FileObject, io.ReadCloser, error) {
	obj, err := s.repo.TryConsume(ctx, id, s.now())
	if err != nil {
		return nil, nil, err
	}

	rc, _, err := s.store.Get(ctx, obj.StorageKey)
	if err != nil {
		s.logger.Error(ctx, "blob missing after admission", "id", id, "error", err.Error())
		return nil, nil, fmt.Errorf("%w: blob unavailable for admitted object", common.ErrStorage)
	}

	return obj, rc, nil
}

// Finish runs after the response stream completes (successfully or not). If
// the served download consumed the object's last slot, both blob and record
// are removed; blob deletion is retried briefly and the sweeper backstops
// anything still missed.
func (s *ShareService) Finish(ctx context.Context, obj *models.FileObject) error {
	if !obj.Spent() {
		return nil
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, obj.StorageKey); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "deferred blob deletion failed", "id", obj.ID, "error", err.Error())
		return err
	}

	if _, err := s.repo.DeleteSpent(ctx, obj.ID, s.now()); err != nil {
		s.logger.Error(ctx, "deferred record deletion failed", "id", obj.ID, "error", err.Error())
		return err
	}

	s.logger.Info(ctx, "object purged after final download", "id", obj.ID)
	return nil
}
