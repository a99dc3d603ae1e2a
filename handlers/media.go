package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lifeshield/lifeshield-api/pkg/logger"
)

// MediaStore is implemented by storage.MediaStorage.
type MediaStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// MediaHandler accepts multipart uploads for blog and profile images and
// hands back a presigned download URL.
type MediaHandler struct {
	store   MediaStore
	urlTTL  time.Duration
	maxSize int64
}

func NewMediaHandler(store MediaStore) *MediaHandler {
	return &MediaHandler{store: store, urlTTL: 24 * time.Hour, maxSize: 10 << 20}
}

func (h *MediaHandler) Register(rg *gin.RouterGroup) {
	m := rg.Group("/media")
	m.POST("/upload", h.Upload)
}

// Upload stores the "file" form part under a generated key.
func (h *MediaHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if fh.Size > h.maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer f.Close()

	key := fmt.Sprintf("uploads/%s%s", primitive.NewObjectID().Hex(), filepath.Ext(fh.Filename))
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := h.store.Upload(c.Request.Context(), key, f, fh.Size, contentType); err != nil {
		logger.Errorf("media upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	url, err := h.store.PresignedURL(c.Request.Context(), key, h.urlTTL)
	if err != nil {
		logger.Errorf("presigned url failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create download link"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": key, "url": url})
}
