package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-console/internal/catalogapi"
	"catalog-console/internal/ledger"
	"catalog-console/internal/models"

	"go.uber.org/zap"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotConfirmed = errors.New("action not confirmed")
)

// Confirmer asks the operator a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// SubmitResult is the outcome of a save whose product stage succeeded.
// ImageErr is set when the image stage failed afterwards; the product save
// stands regardless.
type SubmitResult struct {
	Product  models.Product
	ImageErr error
}

// SubmissionService saves a product and then its images, moving the unsaved
// product's images to the server-assigned id in between.
type SubmissionService struct {
	api      *catalogapi.Client
	products *ledger.ProductLedger
	images   *ledger.ImageLedger
}

func NewSubmissionService(api *catalogapi.Client, products *ledger.ProductLedger, images *ledger.ImageLedger) *SubmissionService {
	return &SubmissionService{
		api:      api,
		products: products,
		images:   images,
	}
}

// ValidateProduct runs the checks that must pass before anything is sent.
func ValidateProduct(p models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	amounts := []struct {
		field string
		value *float64
	}{
		{"price", p.Price},
		{"purchasePrice", p.PurchasePrice},
		{"totalCost", p.TotalCost},
	}
	for _, a := range amounts {
		if a.value != nil && *a.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, a.field)
		}
	}
	if p.RealStock != nil && *p.RealStock < 0 {
		return fmt.Errorf("%w: realStock must not be negative", ErrValidation)
	}
	return nil
}

// Submit saves the draft of product id. An error means the product stage
// failed and nothing changed in either ledger.
func (s *SubmissionService) Submit(ctx context.Context, id int64) (*SubmitResult, error) {
	draft, err := s.products.GetDraft(id)
	if err != nil {
		return nil, err
	}
	if err := ValidateProduct(draft); err != nil {
		zap.L().Info("product rejected before submit", zap.Int64("product_id", id), zap.Error(err))
		return nil, err
	}

	var saved *models.Product
	if draft.IsTemporary() {
		saved, err = s.api.CreateProduct(ctx, draft)
		if err != nil {
			zap.L().Error("failed to create product", zap.Error(err))
			return nil, err
		}
		if err := s.products.RebindID(id, saved.ID); err != nil {
			return nil, fmt.Errorf("failed to rebind product %d: %w", saved.ID, err)
		}
		s.images.Rebind(id, saved.ID)
		zap.L().Info("product created", zap.Int64("product_id", saved.ID))
	} else {
		saved, err = s.api.UpdateProduct(ctx, id, draft)
		if err != nil {
			zap.L().Error("failed to update product", zap.Int64("product_id", id), zap.Error(err))
			return nil, err
		}
	}
	s.products.Confirm(*saved)

	result := &SubmitResult{Product: saved.Clone()}

	subs, files := s.images.BuildSubmission(saved.ID)
	if len(subs) == 0 {
		return result, nil
	}

	resp, err := s.api.ProcessImages(ctx, saved.ID, subs, files)
	if err != nil {
		zap.L().Error("product saved but images were not",
			zap.Int64("product_id", saved.ID),
			zap.Int("changes", len(subs)),
			zap.Error(err),
		)
		result.ImageErr = err
		return result, nil
	}
	s.images.Reconcile(ctx, saved.ID, resp.Images)

	return result, nil
}

// DeleteProduct removes a product after the operator confirms. An unsaved
// product is discarded without calling the backend.
func (s *SubmissionService) DeleteProduct(ctx context.Context, id int64, confirmer Confirmer) error {
	if confirmer == nil || !confirmer.Confirm(ctx, fmt.Sprintf("Delete product %d?", id)) {
		return ErrNotConfirmed
	}

	if id == models.TemporaryID {
		s.products.Discard(id)
		s.images.Clear(ctx, id)
		return nil
	}

	if err := s.api.DeleteProduct(ctx, id); err != nil {
		zap.L().Error("failed to delete product", zap.Int64("product_id", id), zap.Error(err))
		return err
	}
	s.products.Remove(id)
	s.images.Clear(ctx, id)
	zap.L().Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// BatchDelete deletes several products after one confirmation. Products the
// backend reports as failed stay in the ledger.
func (s *SubmissionService) BatchDelete(ctx context.Context, ids []int64, confirmer Confirmer) (*models.BatchDeleteResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no products selected", ErrValidation)
	}
	if confirmer == nil || !confirmer.Confirm(ctx, fmt.Sprintf("Delete %d products?", len(ids))) {
		return nil, ErrNotConfirmed
	}

	remote := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == models.TemporaryID {
			s.products.Discard(id)
			s.images.Clear(ctx, id)
			continue
		}
		remote = append(remote, id)
	}
	if len(remote) == 0 {
		return &models.BatchDeleteResult{Total: len(ids), SuccessCount: len(ids), FailedIDs: []int64{}}, nil
	}

	result, err := s.api.BatchDelete(ctx, remote)
	if err != nil {
		zap.L().Error("failed to batch delete products", zap.Int64s("product_ids", remote), zap.Error(err))
		return nil, err
	}

	failed := make(map[int64]bool, len(result.FailedIDs))
	for _, id := range result.FailedIDs {
		failed[id] = true
	}
	for _, id := range remote {
		if failed[id] {
			continue
		}
		s.products.Remove(id)
		s.images.Clear(ctx, id)
	}
	if result.FailedCount > 0 {
		zap.L().Warn("some products were not deleted", zap.Int64s("failed_ids", result.FailedIDs))
	}
	return result, nil
}
