package services

import (
	"context"
	"fmt"
	"strings"

	"catalog-console/internal/catalogapi"
	"catalog-console/internal/ledger"
	"catalog-console/internal/models"

	"go.uber.org/zap"
)

// ImageService loads server images into the image ledger and attaches
// operator uploads.
type ImageService struct {
	api      *catalogapi.Client
	products *ledger.ProductLedger
	images   *ledger.ImageLedger
}

func NewImageService(api *catalogapi.Client, products *ledger.ProductLedger, images *ledger.ImageLedger) *ImageService {
	return &ImageService{api: api, products: products, images: images}
}

// Fetch replaces the product's images with the backend's list. The unsaved
// product has nothing on the backend and is returned as is.
func (s *ImageService) Fetch(ctx context.Context, productID int64) ([]models.ProductImage, error) {
	if productID == models.TemporaryID {
		return s.images.List(productID), nil
	}

	server, err := s.api.ListProductImages(ctx, productID)
	if err != nil {
		zap.L().Error("failed to load product images", zap.Int64("product_id", productID), zap.Error(err))
		return nil, err
	}
	s.images.Load(productID, server)
	return s.images.List(productID), nil
}

// Attach adds an uploaded file as a new image of the product. The product
// must be known to the ledger, listed or unsaved.
func (s *ImageService) Attach(ctx context.Context, productID int64, file models.ImageFile) (models.ProductImage, error) {
	if _, ok := s.products.Get(productID); !ok {
		return models.ProductImage{}, fmt.Errorf("%w: %d", ledger.ErrProductNotFound, productID)
	}
	if len(file.Data) == 0 {
		return models.ProductImage{}, fmt.Errorf("%w: empty file", ErrValidation)
	}
	if !strings.HasPrefix(file.ContentType, "image/") {
		return models.ProductImage{}, fmt.Errorf("%w: %s is not an image", ErrValidation, file.ContentType)
	}
	return s.images.Add(ctx, productID, file)
}
