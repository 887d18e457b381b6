package service

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"storefront/commerce/internal/category"
	"storefront/commerce/internal/client"
	"storefront/commerce/internal/domain"
)

// CategoryService is the category-fetch collaborator: it consults the cache before
// touching the catalog API and stores every successful response.
type CategoryService struct {
	cache  *category.Cache
	client client.CatalogClient
	clock  clock.Clock
}

type Option func(*CategoryService)

// WithClock sets the clock driving the refresher ticker.
func WithClock(c clock.Clock) Option {
	return func(s *CategoryService) { s.clock = c }
}

func NewCategoryService(cache *category.Cache, client client.CatalogClient, opts ...Option) *CategoryService {
	s := &CategoryService{
		cache:  cache,
		client: client,
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories returns the cached list while it is fresh. When it is stale the list is
// refetched; if that fails and a stale list exists, the stale list is served.
func (s *CategoryService) Categories(ctx context.Context) ([]domain.Category, error) {
	if !s.cache.ShouldRefetch() {
		return s.cache.Categories(), nil
	}

	if err := s.Refresh(ctx); err != nil {
		stale := s.cache.Categories()
		if len(stale) > 0 {
			log.Warnf("⚠️ Serving %d stale categories: %v", len(stale), err)
			return stale, nil
		}
		return nil, err
	}

	return s.cache.Categories(), nil
}

// Refresh fetches the category list unconditionally and replaces the cache.
func (s *CategoryService) Refresh(ctx context.Context) error {
	categories, err := s.client.FetchCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh categories: %w", err)
	}

	s.cache.SetCategories(ctx, categories)
	log.Infof("✅ Category cache refreshed with %d categories", len(categories))
	return nil
}

// RunRefresher refreshes the cache whenever it has gone stale, checking every interval,
// until ctx is cancelled.
func (s *CategoryService) RunRefresher(ctx context.Context, interval time.Duration) error {
	log.Infof("🚀 Starting category refresher (every %v)", interval)

	ticker := s.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		if s.cache.ShouldRefetch() {
			if err := s.Refresh(ctx); err != nil {
				log.Errorf("❌ Category refresh failed: %v", err)
			}
		}

		select {
		case <-ctx.Done():
			log.Info("🛑 Category refresher stopping")
			return nil
		case <-ticker.C:
		}
	}
}
