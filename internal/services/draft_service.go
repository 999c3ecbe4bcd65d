package services

import (
	"context"
	"errors"

	"catalog-console/internal/catalogapi"
	"catalog-console/internal/fields"
	"catalog-console/internal/ledger"
	"catalog-console/internal/models"

	"go.uber.org/zap"
)

// DraftService opens products for editing and applies form edits.
type DraftService struct {
	api      *catalogapi.Client
	products *ledger.ProductLedger
	images   *ledger.ImageLedger
	fields   *fields.Registry
}

func NewDraftService(api *catalogapi.Client, products *ledger.ProductLedger, images *ledger.ImageLedger, registry *fields.Registry) *DraftService {
	return &DraftService{
		api:      api,
		products: products,
		images:   images,
		fields:   registry,
	}
}

// Open returns the draft of id, fetching the product when the listing has
// not loaded it.
func (s *DraftService) Open(ctx context.Context, id int64) (models.Product, error) {
	draft, err := s.products.GetDraft(id)
	if err == nil || !errors.Is(err, ledger.ErrProductNotFound) || id <= 0 {
		return draft, err
	}

	p, err := s.api.GetProduct(ctx, id)
	if err != nil {
		zap.L().Error("failed to load product", zap.Int64("product_id", id), zap.Error(err))
		return models.Product{}, err
	}
	if p.ID == 0 {
		p.ID = id
	}
	s.products.Upsert(*p)
	return s.products.GetDraft(id)
}

// Create starts the unsaved product.
func (s *DraftService) Create() (models.Product, error) {
	return s.products.NewTemporary()
}

// Patch applies a form edit. Choosing a product type on a draft with no
// size metrics seeds the type's default metric keys with empty values.
func (s *DraftService) Patch(id int64, patch models.ProductPatch) (models.Product, error) {
	if patch.CustomType != nil && patch.SizeMetrics == nil {
		current, err := s.products.GetDraft(id)
		if err != nil {
			return models.Product{}, err
		}
		if *patch.CustomType != current.CustomType && len(current.SizeMetrics) == 0 {
			if keys := s.fields.DefaultMetricsFor(*patch.CustomType); len(keys) > 0 {
				patch.SizeMetrics = make(map[string]string, len(keys))
				for _, k := range keys {
					patch.SizeMetrics[k] = ""
				}
			}
		}
	}
	return s.products.SetDraft(id, patch)
}

// Discard drops unsaved edits. For the unsaved product this also drops the
// images attached to it.
func (s *DraftService) Discard(ctx context.Context, id int64) {
	s.products.Discard(id)
	if id == models.TemporaryID {
		s.images.Clear(ctx, id)
	}
}
