// Package httpapi exposes the upload/download endpoints over HTTP. It is a
// thin transport layer: admission, lifecycle and storage decisions all live
// in the share service.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zeroshare/zeroshare/internal/logging"
	"github.com/zeroshare/zeroshare/internal/server/services"
)

// Server wraps a gin engine around the share service.
type Server struct {
	address string
	service *services.ShareService
	logger  logging.Logger
	engine  *gin.Engine
}

// NewServer builds the router. maxUploadSize bounds multipart memory.
func NewServer(address string, service *services.ShareService, maxUploadSize int64, logger logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = maxUploadSize

	s := &Server{
		address: address,
		service: service,
		logger:  logger.With("module", "http_server"),
		engine:  engine,
	}

	engine.GET("/healthz", s.handleHealth)
	engine.POST("/upload", s.handleUpload)
	engine.GET("/download/:id", s.handleDownload)

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
