package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeroshare/zeroshare/internal/common"
)

type uploadResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GET /healthz
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "zeroshare"})
}

// POST /upload
//
// Accepts one multipart file field named "file" holding an opaque ciphertext
// package. The handler never inspects the content; keys never appear in the
// request.
func (s *Server) handleUpload(c *gin.Context) {
	ctx := c.Request.Context()

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "no file uploaded"})
		return
	}

	f, err := header.Open()
	if err != nil {
		s.logger.Error(ctx, "opening multipart file failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "upload failed"})
		return
	}
	defer f.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	id, err := s.service.Upload(ctx, f, header.Size, header.Filename, mimeType)
	if err != nil {
		if errors.Is(err, common.ErrSizeExceeded) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "file too large"})
			return
		}
		s.logger.Error(ctx, "upload failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "upload failed"})
		return
	}

	c.JSON(http.StatusOK, uploadResponse{ID: id})
}

// GET /download/:id
//
// Streams the ciphertext package on admission; the denial reasons map to
// distinct statuses so the client can tell the recipient what happened.
func (s *Server) handleDownload(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	obj, rc, err := s.service.Download(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, errorResponse{Error: "file not found"})
		case errors.Is(err, common.ErrExpired):
			c.JSON(http.StatusForbidden, errorResponse{Error: "file has expired"})
		case errors.Is(err, common.ErrAlreadyConsumed):
			c.JSON(http.StatusForbidden, errorResponse{Error: "maximum downloads reached"})
		default:
			s.logger.Error(ctx, "download failed", "id", id, "error", err.Error())
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "download failed"})
		}
		return
	}
	defer rc.Close()

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", obj.OriginalName),
	}
	c.DataFromReader(http.StatusOK, obj.SizeBytes, obj.MimeType, rc, headers)

	// deferred deletion: runs only after the stream finished, success or not
	if err := s.service.Finish(ctx, obj); err != nil {
		s.logger.Warn(ctx, "post-stream cleanup incomplete, sweeper will retry", "id", id)
	}
}
