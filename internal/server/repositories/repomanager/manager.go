package repomanager

import (
	"context"
	"database/sql"

	"github.com/zeroshare/zeroshare/internal/dbx"
	"github.com/zeroshare/zeroshare/internal/server/repositories/files"
)

// RepositoryManager vends the registry repositories for one backend and
// owns schema migration.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Files(db dbx.DBTX) files.Repository
}
