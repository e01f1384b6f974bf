package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/storage"
	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/response"
)

// BlobOpener resolves a signed download token to stored bytes
type BlobOpener interface {
	Open(ctx context.Context, token string) (*storage.Blob, error)
}

// FileHandler serves documents behind signed URLs
type FileHandler struct {
	blobs BlobOpener
}

// NewFileHandler creates a new file handler
func NewFileHandler(blobs BlobOpener) *FileHandler {
	return &FileHandler{blobs: blobs}
}

// Download streams the blob the token grants
// GET /api/v1/files/:token
func (h *FileHandler) Download(c *gin.Context) {
	blob, err := h.blobs.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "private, no-store")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Length", strconv.Itoa(len(blob.Data)))
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}
