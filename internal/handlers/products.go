package handlers

import (
	"context"
	"net/http"

	"catalog-console/internal/fields"
	"catalog-console/internal/ledger"
	"catalog-console/internal/models"
	"catalog-console/internal/services"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type ProductsHandler struct {
	catalog     *services.CatalogService
	drafts      *services.DraftService
	submissions *services.SubmissionService
	images      *ledger.ImageLedger
	tracker     *services.ChangeTracker
	registry    *fields.Registry
}

func NewProductsHandler(
	catalog *services.CatalogService,
	drafts *services.DraftService,
	submissions *services.SubmissionService,
	images *ledger.ImageLedger,
	tracker *services.ChangeTracker,
	registry *fields.Registry,
) *ProductsHandler {
	return &ProductsHandler{
		catalog:     catalog,
		drafts:      drafts,
		submissions: submissions,
		images:      images,
		tracker:     tracker,
		registry:    registry,
	}
}

// DraftView is a product as the edit form shows it.
type DraftView struct {
	Product    models.Product    `json:"product"`
	Metrics    []fields.Metric   `json:"metrics"`
	TypeLabel  string            `json:"typeLabel"`
	PreviewURL string            `json:"previewUrl,omitempty"`
	Revision   services.Revision `json:"revision"`
}

type SubmitView struct {
	DraftView
	ImageError string `json:"imageError,omitempty"`
}

type BatchDeleteView struct {
	Result *models.BatchDeleteResult `json:"result"`
}

// List returns the listing. Filter keys in the query replace the current
// filters they name and restart at page 1; an empty value clears that filter.
// A bare page parameter moves to that page.
func (h *ProductsHandler) List(c *gin.Context) {
	var req models.ListingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid listing query", Message: err.Error()})
		return
	}

	if req.FromDate != nil && *req.FromDate != "" {
		t, err := dateparse.ParseAny(*req.FromDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid fromDate", Message: err.Error()})
			return
		}
		normalized := t.Format("2006-01-02")
		req.FromDate = &normalized
	}

	ctx := c.Request.Context()
	var (
		state services.ListingState
		err   error
	)
	switch filters := req.Filters(); {
	case !filters.Empty():
		state, err = h.catalog.SetFilters(ctx, filters)
	case req.Page > 0:
		state, err = h.catalog.SetPage(ctx, req.Page)
	default:
		state, err = h.catalog.Fetch(ctx)
	}
	if err != nil {
		respondError(c, "failed to load products", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *ProductsHandler) More(c *gin.Context) {
	state, err := h.catalog.Append(c.Request.Context())
	if err != nil {
		respondError(c, "failed to load more products", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *ProductsHandler) ResetFilters(c *gin.Context) {
	state, err := h.catalog.ResetFilters(c.Request.Context())
	if err != nil {
		respondError(c, "failed to load products", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Export writes the loaded listing as CSV.
func (h *ProductsHandler) Export(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="products.csv"`)
	c.Status(http.StatusOK)
	if err := services.ExportCSV(c.Writer, h.catalog.State().Items, h.registry); err != nil {
		zap.L().Error("failed to export products", zap.Error(err))
	}
}

func (h *ProductsHandler) Create(c *gin.Context) {
	p, err := h.drafts.Create()
	if err != nil {
		respondError(c, "failed to create product", err)
		return
	}
	c.JSON(http.StatusCreated, h.view(p))
}

func (h *ProductsHandler) GetDraft(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	p, err := h.drafts.Open(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to open product", err)
		return
	}
	c.JSON(http.StatusOK, h.view(p))
}

func (h *ProductsHandler) PatchDraft(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid product patch", Message: err.Error()})
		return
	}
	p, err := h.drafts.Patch(id, patch)
	if err != nil {
		respondError(c, "failed to update draft", err)
		return
	}
	c.JSON(http.StatusOK, h.view(p))
}

func (h *ProductsHandler) DiscardDraft(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	h.drafts.Discard(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

// Submit saves the draft. A failed image stage after a saved product answers
// 207 with the saved product and the image error.
func (h *ProductsHandler) Submit(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	result, err := h.submissions.Submit(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to save product", err)
		return
	}

	view := SubmitView{DraftView: h.view(result.Product)}
	status := http.StatusOK
	if result.ImageErr != nil {
		view.ImageError = result.ImageErr.Error()
		status = http.StatusMultiStatus
	}
	c.JSON(status, view)
}

// Delete removes a product. The request must carry confirm=true.
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := h.submissions.DeleteProduct(c.Request.Context(), id, confirmed(c.Query("confirm"))); err != nil {
		respondError(c, "failed to delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductsHandler) BatchDelete(c *gin.Context) {
	var req models.BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid batch delete request", Message: err.Error()})
		return
	}
	result, err := h.submissions.BatchDelete(c.Request.Context(), req.IDs, confirmed(req.Confirm))
	if err != nil {
		respondError(c, "failed to delete products", err)
		return
	}
	c.JSON(http.StatusOK, BatchDeleteView{Result: result})
}

func (h *ProductsHandler) view(p models.Product) DraftView {
	v := DraftView{
		Product:   p,
		Metrics:   h.registry.OrderedMetrics(p.CustomType, p.SizeMetrics),
		TypeLabel: h.registry.TypeLabel(p.CustomType),
		Revision:  h.tracker.Revision(p.ID),
	}
	if url, ok := h.images.PreviewURL(p.ID); ok {
		v.PreviewURL = url
	}
	return v
}

// confirmed answers the confirmation prompt with a value the client sent
// along with the request.
func confirmed(answer interface{}) services.Confirmer {
	return services.ConfirmFunc(func(ctx context.Context, prompt string) bool {
		ok := cast.ToBool(answer)
		if !ok {
			zap.L().Debug("confirmation missing", zap.String("prompt", prompt))
		}
		return ok
	})
}
