// Package server initializes and runs the main application server.
// It opens the lifecycle registry, configures the blob storage backend,
// handles graceful shutdown, and starts the HTTP endpoint together with
// the background sweeper.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/zeroshare/zeroshare/internal/logging"
	"github.com/zeroshare/zeroshare/internal/server/config"
	"github.com/zeroshare/zeroshare/internal/server/httpapi"
	"github.com/zeroshare/zeroshare/internal/server/repositories/files"
	"github.com/zeroshare/zeroshare/internal/server/repositories/repomanager"
	"github.com/zeroshare/zeroshare/internal/server/services"
	"github.com/zeroshare/zeroshare/internal/server/storage"
	"github.com/zeroshare/zeroshare/internal/server/sweeper"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	server  *httpapi.Server
	sweeper *sweeper.Sweeper
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	var db *sql.DB
	var repo files.Repository

	if cfg.DatabaseDSN == config.MemoryDSN {
		repo = files.NewInMemoryRepository()
	} else {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm := repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("db migration error: %w", err)
		}
		repo = rm.Files(db)
	}

	store, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	svc := services.NewShareService(repo, store, cfg, logger)
	srv := httpapi.NewServer(cfg.EndpointAddr, svc, cfg.MaxUploadSize, logger)
	sw := sweeper.New(repo, store, cfg.SweepInterval, logger)

	return &App{config: cfg, logger: logger, db: db, server: srv, sweeper: sw}, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.StorageBackend {
	case config.StorageFS:
		return storage.NewFSStore(cfg.UploadDir)
	case config.StorageS3:
		return storage.NewS3Store(ctx, storage.S3Options{
			User:         cfg.S3User,
			Password:     cfg.S3Password,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	case config.StorageMemory:
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}
}
