package services

import (
	"context"
	"sync"

	"catalog-console/internal/catalogapi"
	"catalog-console/internal/ledger"
	"catalog-console/internal/models"

	"go.uber.org/zap"
)

// ListingState is the current listing as the console shows it.
type ListingState struct {
	Filters   models.ProductQuery `json:"filters"`
	Page      int                 `json:"page"`
	PageSize  int                 `json:"pageSize"`
	Total     int                 `json:"total"`
	HasMore   bool                `json:"hasMore"`
	LastError string              `json:"error,omitempty"`
	Items     []models.Product    `json:"items"`
}

// CatalogService drives the filtered, paginated product listing. Loaded
// pages go into the product ledger.
type CatalogService struct {
	api      *catalogapi.Client
	products *ledger.ProductLedger

	mu       sync.Mutex
	filters  models.ProductQuery
	page     int
	pageSize int
	total    int
	hasMore  bool
	lastErr  error
}

func NewCatalogService(api *catalogapi.Client, products *ledger.ProductLedger, pageSize int) *CatalogService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &CatalogService{
		api:      api,
		products: products,
		page:     1,
		pageSize: pageSize,
		hasMore:  true,
	}
}

// Fetch reloads the current page with the current filters.
func (s *CatalogService) Fetch(ctx context.Context) (ListingState, error) {
	s.mu.Lock()
	filters, page, pageSize := s.filters, s.page, s.pageSize
	s.mu.Unlock()

	result, err := s.api.ListProducts(ctx, filters, page, pageSize)
	if err != nil {
		zap.L().Error("failed to load products", zap.Int("page", page), zap.Error(err))
		s.setError(err)
		return s.State(), err
	}
	s.products.ReplaceItems(result.Items)

	s.mu.Lock()
	s.total = result.Total
	s.hasMore = len(result.Items) == pageSize
	s.lastErr = nil
	s.mu.Unlock()

	return s.State(), nil
}

// Append loads the next page after the loaded items.
func (s *CatalogService) Append(ctx context.Context) (ListingState, error) {
	s.mu.Lock()
	filters, next, pageSize := s.filters, s.page+1, s.pageSize
	s.mu.Unlock()

	result, err := s.api.ListProducts(ctx, filters, next, pageSize)
	if err != nil {
		zap.L().Error("failed to load more products", zap.Int("page", next), zap.Error(err))
		s.setError(err)
		return s.State(), err
	}
	s.products.AppendItems(result.Items)

	s.mu.Lock()
	s.page = next
	s.total = result.Total
	s.hasMore = len(result.Items) == pageSize
	s.lastErr = nil
	s.mu.Unlock()

	return s.State(), nil
}

// SetFilters applies a filter form submission and reloads from page 1.
// Fields submitted empty clear their filter.
func (s *CatalogService) SetFilters(ctx context.Context, update models.FilterUpdate) (ListingState, error) {
	s.mu.Lock()
	s.filters = s.filters.Apply(update)
	s.page = 1
	s.mu.Unlock()

	return s.Fetch(ctx)
}

func (s *CatalogService) ResetFilters(ctx context.Context) (ListingState, error) {
	s.mu.Lock()
	s.filters = models.ProductQuery{}
	s.page = 1
	s.mu.Unlock()

	return s.Fetch(ctx)
}

// SetPage jumps to page and reloads.
func (s *CatalogService) SetPage(ctx context.Context, page int) (ListingState, error) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()

	return s.Fetch(ctx)
}

func (s *CatalogService) State() ListingState {
	s.mu.Lock()
	state := ListingState{
		Filters:  s.filters,
		Page:     s.page,
		PageSize: s.pageSize,
		Total:    s.total,
		HasMore:  s.hasMore,
	}
	if s.lastErr != nil {
		state.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()

	state.Items = s.products.Items()
	return state
}

func (s *CatalogService) setError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
