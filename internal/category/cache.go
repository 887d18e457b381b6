// Package category caches the storefront category list with a fixed time-to-live.
package category

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"storefront/commerce/internal/domain"
	"storefront/commerce/internal/storage"
)

const (
	CacheDuration = 5 * time.Minute

	DefaultCategoriesKey = "category-store"
)

// Listener is notified after SetCategories ("set") and ClearCategories ("clear").
type Listener func(action string, count int)

type persistedCache struct {
	Categories    []domain.Category `json:"categories"`
	LastFetchedAt *time.Time        `json:"last_fetched_at"`
	IsLoaded      bool              `json:"is_loaded"`
}

// Cache holds the last fetched category list. The list is only ever replaced as a whole.
type Cache struct {
	mutex         sync.RWMutex
	categories    []domain.Category
	lastFetchedAt *time.Time
	isLoaded      bool

	storage  storage.Storage
	clock    clock.Clock
	key      string
	listener Listener
}

type Option func(*Cache)

func WithClock(c clock.Clock) Option {
	return func(cache *Cache) { cache.clock = c }
}

func WithKey(key string) Option {
	return func(cache *Cache) { cache.key = key }
}

func WithListener(l Listener) Option {
	return func(cache *Cache) { cache.listener = l }
}

func NewCache(st storage.Storage, opts ...Option) *Cache {
	if st == nil {
		st = storage.NewNoopStorage()
	}
	c := &Cache{
		categories: []domain.Category{},
		storage:    st,
		clock:      clock.New(),
		key:        DefaultCategoriesKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hydrate restores the cache from storage, keeping the persisted LastFetchedAt so a
// restart does not make a fresh list look stale or a stale list look fresh.
func (c *Cache) Hydrate(ctx context.Context) error {
	data, err := c.storage.Get(ctx, c.key)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	if data == nil {
		return nil
	}

	var p persistedCache
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode categories: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.categories = append([]domain.Category{}, p.Categories...)
	c.lastFetchedAt = p.LastFetchedAt
	c.isLoaded = p.IsLoaded && len(c.categories) > 0
	return nil
}

// SetCategories replaces the list and stamps LastFetchedAt with the current time.
func (c *Cache) SetCategories(ctx context.Context, categories []domain.Category) {
	now := c.clock.Now()

	c.mutex.Lock()
	c.categories = append([]domain.Category{}, categories...)
	c.lastFetchedAt = &now
	c.isLoaded = len(c.categories) > 0
	c.persist(ctx)
	c.mutex.Unlock()

	log.Debugf("Category cache set with %d categories", len(categories))
	c.notify("set", len(categories))
}

func (c *Cache) Categories() []domain.Category {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return append([]domain.Category{}, c.categories...)
}

func (c *Cache) CategoryBySlug(slug string) (domain.Category, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for _, cat := range c.categories {
		if cat.Slug == slug {
			return cat, true
		}
	}
	return domain.Category{}, false
}

func (c *Cache) CategoryByID(id string) (domain.Category, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return domain.Category{}, false
}

func (c *Cache) ClearCategories(ctx context.Context) {
	c.mutex.Lock()
	c.categories = []domain.Category{}
	c.lastFetchedAt = nil
	c.isLoaded = false
	c.persist(ctx)
	c.mutex.Unlock()

	c.notify("clear", 0)
}

// ShouldRefetch reports whether the list is empty, never fetched, or older than CacheDuration.
func (c *Cache) ShouldRefetch() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if len(c.categories) == 0 || c.lastFetchedAt == nil {
		return true
	}
	return c.clock.Now().Sub(*c.lastFetchedAt) > CacheDuration
}

func (c *Cache) Metadata() domain.CacheMetadata {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	meta := domain.CacheMetadata{IsLoaded: c.isLoaded}
	if c.lastFetchedAt != nil {
		at := *c.lastFetchedAt
		meta.LastFetchedAt = &at
	}
	return meta
}

func (c *Cache) persist(ctx context.Context) {
	data, err := json.Marshal(persistedCache{
		Categories:    c.categories,
		LastFetchedAt: c.lastFetchedAt,
		IsLoaded:      c.isLoaded,
	})
	if err != nil {
		log.Errorf("❌ Failed to encode categories: %v", err)
		return
	}
	if err := c.storage.Set(ctx, c.key, data); err != nil {
		log.Errorf("❌ Failed to persist categories: %v", err)
	}
}

func (c *Cache) notify(action string, count int) {
	if c.listener != nil {
		c.listener(action, count)
	}
}
