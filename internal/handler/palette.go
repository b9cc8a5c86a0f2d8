package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bukka/internal/storage"
)

type ColorResolver interface {
	Color(ctx context.Context, key string) (string, error)
}

type PaletteHandler struct {
	colors ColorResolver
	log    *zap.Logger
}

// NewPaletteHandler accepts a nil resolver when image storage is not
// configured; requests then get 503.
func NewPaletteHandler(colors ColorResolver, log *zap.Logger) *PaletteHandler {
	return &PaletteHandler{colors: colors, log: log}
}

// Color handles GET /menu/images/*key.
func (h *PaletteHandler) Color(c *gin.Context) {
	if h.colors == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image key required"})
		return
	}

	color, err := h.colors.Color(c.Request.Context(), key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	case err != nil:
		h.log.Warn("palette failed", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not read image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "color": color})
}
