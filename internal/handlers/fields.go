package handlers

import (
	"net/http"

	"catalog-console/internal/fields"
	"catalog-console/internal/models"
	"catalog-console/internal/services"

	"github.com/gin-gonic/gin"
)

type FieldsHandler struct {
	registry   *fields.Registry
	categories *services.CategoryService
}

func NewFieldsHandler(registry *fields.Registry, categories *services.CategoryService) *FieldsHandler {
	return &FieldsHandler{registry: registry, categories: categories}
}

// GetFields returns the product form defaults: type labels, size-metric
// labels, default metrics per type and option lists.
func (h *FieldsHandler) GetFields(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Defaults())
}

func (h *FieldsHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.CategoriesResponse{Categories: h.categories.List(c.Request.Context())})
}
