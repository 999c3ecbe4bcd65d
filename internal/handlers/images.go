package handlers

import (
	"io"
	"net/http"

	"catalog-console/internal/ledger"
	"catalog-console/internal/models"
	"catalog-console/internal/services"

	"github.com/gin-gonic/gin"
)

// maxImageSize bounds a single uploaded image.
const maxImageSize = 32 << 20

type ImagesHandler struct {
	service *services.ImageService
	images  *ledger.ImageLedger
	tracker *services.ChangeTracker
}

func NewImagesHandler(service *services.ImageService, images *ledger.ImageLedger, tracker *services.ChangeTracker) *ImagesHandler {
	return &ImagesHandler{service: service, images: images, tracker: tracker}
}

type ImagesView struct {
	Images     []models.ProductImage `json:"images"`
	PreviewURL string                `json:"previewUrl,omitempty"`
	Revision   services.Revision     `json:"revision"`
}

// List returns the product's images, loading them from the backend on first
// view. refresh=true reloads them, discarding local changes.
func (h *ImagesHandler) List(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if c.Query("refresh") == "true" || len(h.images.List(id)) == 0 {
		if _, err := h.service.Fetch(c.Request.Context(), id); err != nil {
			respondError(c, "failed to load images", err)
			return
		}
	}
	c.JSON(http.StatusOK, h.view(id))
}

// Upload attaches the multipart "file" part as a new image.
func (h *ImagesHandler) Upload(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no file uploaded",
			Message: err.Error(),
		})
		return
	}
	if header.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "image too large"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read upload", Message: err.Error()})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read upload", Message: err.Error()})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	img, err := h.service.Attach(c.Request.Context(), id, models.ImageFile{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		respondError(c, "failed to attach image", err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *ImagesHandler) SetMain(c *gin.Context) {
	h.mutate(c, h.images.SetMain)
}

func (h *ImagesHandler) ToggleSelected(c *gin.Context) {
	h.mutate(c, h.images.ToggleSelected)
}

func (h *ImagesHandler) Delete(c *gin.Context) {
	h.mutate(c, h.images.MarkDeleted)
}

func (h *ImagesHandler) mutate(c *gin.Context, op func(productID int64, key string) error) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := op(id, c.Param("key")); err != nil {
		respondError(c, "failed to update image", err)
		return
	}
	c.JSON(http.StatusOK, h.view(id))
}

func (h *ImagesHandler) view(id int64) ImagesView {
	v := ImagesView{
		Images:   h.images.List(id),
		Revision: h.tracker.Revision(id),
	}
	if url, ok := h.images.PreviewURL(id); ok {
		v.PreviewURL = url
	}
	return v
}
