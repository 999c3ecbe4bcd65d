package handlers

import (
	"catalog-console/internal/access"
	"catalog-console/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Routes bundles the console handlers. Previews is nil when previews are
// staged in object storage instead of in process.
type Routes struct {
	Session  *access.Session
	Gate     *access.Gate
	Auth     *AuthHandler
	Fields   *FieldsHandler
	Products *ProductsHandler
	Images   *ImagesHandler
	Previews *PreviewsHandler
}

func (r Routes) Register(router *gin.Engine) {
	router.GET("/health", HealthHandler)
	if r.Previews != nil {
		router.GET("/previews/:tempId", r.Previews.Get)
	}

	console := router.Group("/console")
	console.POST("/login", r.Auth.Login)
	console.POST("/logout", r.Auth.Logout)
	console.GET("/me", r.Auth.Me)

	api := console.Group("")
	api.Use(middleware.RequireAuthenticated(r.Session))

	canEdit := middleware.RequirePermission(r.Gate, access.CanEdit)
	canDelete := middleware.RequirePermission(r.Gate, access.CanDelete)
	canUpload := middleware.RequirePermission(r.Gate, access.CanUpload)

	api.GET("/fields", r.Fields.GetFields)
	api.GET("/categories", r.Fields.GetCategories)

	// Listing
	api.GET("/products", r.Products.List)
	api.POST("/products/more", r.Products.More)
	api.DELETE("/products/filters", r.Products.ResetFilters)
	api.GET("/products/export.csv", r.Products.Export)
	api.POST("/products/batch-delete", canDelete, r.Products.BatchDelete)

	// Drafts and submission
	api.POST("/products", canEdit, r.Products.Create)
	api.GET("/products/:id/draft", r.Products.GetDraft)
	api.PATCH("/products/:id/draft", canEdit, r.Products.PatchDraft)
	api.DELETE("/products/:id/draft", canEdit, r.Products.DiscardDraft)
	api.POST("/products/:id/submit", canEdit, r.Products.Submit)
	api.DELETE("/products/:id", canDelete, r.Products.Delete)

	// Images
	api.GET("/products/:id/images", r.Images.List)
	api.POST("/products/:id/images", canUpload, r.Images.Upload)
	api.POST("/products/:id/images/:key/main", canEdit, r.Images.SetMain)
	api.POST("/products/:id/images/:key/select", canEdit, r.Images.ToggleSelected)
	api.DELETE("/products/:id/images/:key", canEdit, r.Images.Delete)
}
