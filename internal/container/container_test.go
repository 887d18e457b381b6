package container

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/commerce/internal/config"
	"storefront/commerce/internal/domain"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Storage: config.StorageConfig{Backend: backend, StateKey: "commerce-store", CategoriesKey: "category-store", AuthUserKey: "auth-user"},
		Catalog: config.CatalogConfig{BaseURL: "http://127.0.0.1:1", CategoriesPath: "/graphql", Format: "graphql", Timeout: 1},
		Redis:   config.RedisConfig{KeyPrefix: "test:state:"},
		Events:  config.EventsConfig{StreamPrefix: "test:stream:", MaxLen: 100},
	}
}

func TestNew_MemoryBackend(t *testing.T) {
	c, err := New(context.Background(), testConfig("memory"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.NotNil(t, c.Store)
	assert.NotNil(t, c.Categories)
	assert.NotNil(t, c.Handler)
	assert.True(t, c.Storage.Available())
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), testConfig("s3"))
	require.Error(t, err)
}

func TestNew_RedisBackendPersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := testConfig("redis")
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = port
	cfg.Events.Enabled = true

	c, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	c.Store.AddItem(ctx, domain.CartItem{ID: "p1", Price: 10, Quantity: 1})

	assert.True(t, mr.Exists("test:state:commerce-store"))
	assert.True(t, mr.Exists("test:stream:StateChanged"))

	restarted, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = restarted.Close() })
	assert.Equal(t, 1, restarted.Store.TotalItems())
}
