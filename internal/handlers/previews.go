package handlers

import (
	"net/http"

	"catalog-console/internal/models"
	"catalog-console/internal/preview"

	"github.com/gin-gonic/gin"
)

// PreviewsHandler serves images that are attached but not uploaded yet.
type PreviewsHandler struct {
	store *preview.MemoryStore
}

func NewPreviewsHandler(store *preview.MemoryStore) *PreviewsHandler {
	return &PreviewsHandler{store: store}
}

func (h *PreviewsHandler) Get(c *gin.Context) {
	file, ok := h.store.Get(c.Param("tempId"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "preview not found"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
