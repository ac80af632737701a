package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/zeroshare/zeroshare/internal/common"
	"github.com/zeroshare/zeroshare/internal/dbx"
	"github.com/zeroshare/zeroshare/internal/server/models"
)

// PostgresRepository implements the registry over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

// Create inserts a new record. An id collision surfaces as
// common.ErrAlreadyExists so the caller can regenerate and retry.
func (r *PostgresRepository) Create(ctx context.Context, f *models.FileObject) error {
	query := `
		INSERT INTO files (id, storage_key, original_name, size_bytes, mime_type, created_at, expires_at, download_count, max_downloads)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.StorageKey, f.OriginalName, f.SizeBytes, f.MimeType,
		f.CreatedAt, f.ExpiresAt, f.DownloadCount, f.MaxDownloads)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// TryConsume performs the admission transition as a single conditional
// UPDATE: the increment succeeds only while the servability predicate holds,
// so concurrent callers for the same id are serialized by the row write and
// at most max_downloads of them ever see a row back.
func (r *PostgresRepository) TryConsume(ctx context.Context, id string, now time.Time) (*models.FileObject, error) {
	query := `
		UPDATE files
		SET download_count = download_count + 1
		WHERE id = $1 AND download_count < max_downloads AND expires_at > $2
		RETURNING id, storage_key, original_name, size_bytes, mime_type, created_at, expires_at, download_count, max_downloads;
	`
	f := &models.FileObject{}
	err := r.db.QueryRowContext(ctx, query, id, now).Scan(
		&f.ID, &f.StorageKey, &f.OriginalName, &f.SizeBytes, &f.MimeType,
		&f.CreatedAt, &f.ExpiresAt, &f.DownloadCount, &f.MaxDownloads)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return nil, r.classifyDenial(ctx, id, now)
}

// classifyDenial reads the row after a failed conditional update to pick the
// caller-visible reason. The read is advisory only: it can never admit, so a
// concurrent state change here affects at most the error message.
func (r *PostgresRepository) classifyDenial(ctx context.Context, id string, now time.Time) error {
	query := `SELECT expires_at, download_count, max_downloads FROM files WHERE id = $1;`

	var expiresAt time.Time
	var count, max int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&expiresAt, &count, &max)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !now.Before(expiresAt) {
		return common.ErrExpired
	}
	if count >= max {
		return common.ErrAlreadyConsumed
	}
	// the row became servable between update and read; treat as consumed
	// rather than inventing a fourth outcome
	return common.ErrAlreadyConsumed
}

// DeleteSpent removes the record only while the expired-or-consumed
// predicate still holds, so a delayed delete cannot remove a servable row.
func (r *PostgresRepository) DeleteSpent(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `
		DELETE FROM files
		WHERE id = $1 AND (download_count >= max_downloads OR expires_at <= $2);
	`
	res, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

// SelectPurgeable lists expired or consumed rows for the sweeper.
func (r *PostgresRepository) SelectPurgeable(ctx context.Context, now time.Time, limit int) ([]*models.FileObject, error) {
	query := `
		SELECT id, storage_key, original_name, size_bytes, mime_type, created_at, expires_at, download_count, max_downloads
		FROM files
		WHERE download_count >= max_downloads OR expires_at <= $1
		LIMIT $2;
	`
	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select purgeable files: %w", err)
	}
	defer rows.Close()

	var result []*models.FileObject
	for rows.Next() {
		var f models.FileObject
		if err := rows.Scan(
			&f.ID, &f.StorageKey, &f.OriginalName, &f.SizeBytes, &f.MimeType,
			&f.CreatedAt, &f.ExpiresAt, &f.DownloadCount, &f.MaxDownloads,
		); err != nil {
			return nil, err
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
