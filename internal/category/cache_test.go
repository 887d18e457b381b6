package category

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/commerce/internal/domain"
	"storefront/commerce/internal/storage"
)

func sampleCategories() []domain.Category {
	return []domain.Category{
		{ID: "1", Name: "Kitchen", Slug: "kitchen", IsActive: true, ProductCount: 12},
		{ID: "2", Name: "Garden", Slug: "garden", IsActive: true, ProductCount: 4},
	}
}

func TestCache_Staleness(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	cache := NewCache(storage.NewMemoryStorage(), WithClock(mock))

	assert.True(t, cache.ShouldRefetch(), "fresh cache must refetch")

	cache.SetCategories(ctx, sampleCategories())
	assert.False(t, cache.ShouldRefetch())

	mock.Add(CacheDuration)
	assert.False(t, cache.ShouldRefetch(), "exactly at the boundary is still fresh")

	mock.Add(time.Second)
	assert.True(t, cache.ShouldRefetch())

	cache.SetCategories(ctx, sampleCategories())
	assert.False(t, cache.ShouldRefetch())

	cache.ClearCategories(ctx)
	assert.True(t, cache.ShouldRefetch())
}

func TestCache_EmptySetIsStillStale(t *testing.T) {
	cache := NewCache(storage.NewMemoryStorage(), WithClock(clock.NewMock()))
	cache.SetCategories(context.Background(), nil)

	assert.True(t, cache.ShouldRefetch())
	meta := cache.Metadata()
	assert.False(t, meta.IsLoaded)
	assert.NotNil(t, meta.LastFetchedAt)
}

func TestCache_Lookups(t *testing.T) {
	cache := NewCache(nil)
	cache.SetCategories(context.Background(), sampleCategories())

	cat, ok := cache.CategoryBySlug("garden")
	require.True(t, ok)
	assert.Equal(t, "2", cat.ID)

	cat, ok = cache.CategoryByID("1")
	require.True(t, ok)
	assert.Equal(t, "kitchen", cat.Slug)

	_, ok = cache.CategoryBySlug("toys")
	assert.False(t, ok)
	_, ok = cache.CategoryByID("99")
	assert.False(t, ok)

	assert.Len(t, cache.Categories(), 2)
}

func TestCache_Metadata(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	cache := NewCache(nil, WithClock(mock))

	meta := cache.Metadata()
	assert.False(t, meta.IsLoaded)
	assert.Nil(t, meta.LastFetchedAt)

	cache.SetCategories(ctx, sampleCategories())
	meta = cache.Metadata()
	assert.True(t, meta.IsLoaded)
	require.NotNil(t, meta.LastFetchedAt)
	assert.Equal(t, mock.Now(), *meta.LastFetchedAt)

	cache.ClearCategories(ctx)
	meta = cache.Metadata()
	assert.False(t, meta.IsLoaded)
	assert.Nil(t, meta.LastFetchedAt)
	assert.Empty(t, cache.Categories())
}

func TestCache_HydrateKeepsFetchTime(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	mock := clock.NewMock()

	first := NewCache(st, WithClock(mock))
	first.SetCategories(ctx, sampleCategories())

	mock.Add(2 * time.Minute)
	second := NewCache(st, WithClock(mock))
	require.NoError(t, second.Hydrate(ctx))
	assert.Len(t, second.Categories(), 2)
	assert.False(t, second.ShouldRefetch())

	mock.Add(4 * time.Minute)
	assert.True(t, second.ShouldRefetch())
}

func TestCache_ListenerNotified(t *testing.T) {
	var actions []string
	cache := NewCache(nil, WithListener(func(action string, count int) {
		actions = append(actions, action)
	}))

	cache.SetCategories(context.Background(), sampleCategories())
	cache.ClearCategories(context.Background())

	assert.Equal(t, []string{"set", "clear"}, actions)
}
