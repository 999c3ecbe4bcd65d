package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catalog-console/internal/catalogapi"
	"catalog-console/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CategoryCache persists the last fetched category list.
type CategoryCache interface {
	LoadCategories(ctx context.Context) (*models.CachedCategories, error)
	SaveCategories(ctx context.Context, cached models.CachedCategories) error
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// CategoryService serves the product category list from a TTL cache backed by
// the local store, falling back to a built-in list when the backend fails.
type CategoryService struct {
	api      *catalogapi.Client
	cache    CategoryCache
	fallback []string
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	items     []string
	fetchedAt time.Time
	sched     *cron.Cron
}

func NewCategoryService(api *catalogapi.Client, cache CategoryCache, fallback []string, ttl time.Duration) *CategoryService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CategoryService{
		api:      api,
		cache:    cache,
		fallback: append([]string(nil), fallback...),
		ttl:      ttl,
		now:      time.Now,
	}
}

// List returns the cached categories while they are fresh, else refetches.
// The fallback list is returned, and not cached, when the backend fails.
func (s *CategoryService) List(ctx context.Context) []string {
	s.mu.Lock()
	if s.items != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		items := append([]string(nil), s.items...)
		s.mu.Unlock()
		return items
	}
	s.mu.Unlock()

	if s.cache != nil {
		cached, err := s.cache.LoadCategories(ctx)
		if err != nil {
			zap.L().Warn("failed to read cached categories", zap.Error(err))
		} else if cached != nil && s.now().Sub(cached.FetchedAt) < s.ttl {
			s.remember(cached.Items, cached.FetchedAt)
			return append([]string(nil), cached.Items...)
		}
	}

	items, err := s.Refresh(ctx)
	if err != nil {
		zap.L().Warn("falling back to built-in categories", zap.Error(err))
		return append([]string(nil), s.fallback...)
	}
	return items
}

// Refresh fetches the category list and stores it in both caches.
func (s *CategoryService) Refresh(ctx context.Context) ([]string, error) {
	items, err := s.api.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []string{}
	}

	fetchedAt := s.now()
	s.remember(items, fetchedAt)
	if s.cache != nil {
		if err := s.cache.SaveCategories(ctx, models.CachedCategories{Items: items, FetchedAt: fetchedAt}); err != nil {
			zap.L().Warn("failed to persist categories", zap.Error(err))
		}
	}
	return append([]string(nil), items...), nil
}

// StartRefresh schedules Refresh on a cron spec such as "@every 6h".
func (s *CategoryService) StartRefresh(spec string, timeout time.Duration) error {
	sched := cron.New(cron.WithParser(cronParser))
	_, err := sched.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				zap.S().Error(r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := s.Refresh(ctx); err != nil {
			zap.L().Warn("scheduled category refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid category refresh schedule %q: %w", spec, err)
	}

	s.mu.Lock()
	s.sched = sched
	s.mu.Unlock()
	sched.Start()
	return nil
}

func (s *CategoryService) Stop() {
	s.mu.Lock()
	sched := s.sched
	s.sched = nil
	s.mu.Unlock()
	if sched != nil {
		<-sched.Stop().Done()
	}
}

func (s *CategoryService) remember(items []string, fetchedAt time.Time) {
	s.mu.Lock()
	s.items = append([]string(nil), items...)
	s.fetchedAt = fetchedAt
	s.mu.Unlock()
}
