package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	backends := map[string]Storage{
		"memory": NewMemoryStorage(),
		"redis":  NewRedisStorage(rdb, "test:"),
	}

	for name, st := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			val, err := st.Get(ctx, "missing")
			require.NoError(t, err)
			assert.Nil(t, val)

			require.NoError(t, st.Set(ctx, "cart", []byte(`{"items":[]}`)))
			require.NoError(t, st.Set(ctx, "cart", []byte(`{"items":[{"id":"p1"}]}`)))

			val, err = st.Get(ctx, "cart")
			require.NoError(t, err)
			assert.JSONEq(t, `{"items":[{"id":"p1"}]}`, string(val))
			assert.True(t, st.Available())
		})
	}
}

func TestRedisStorage_UsesKeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	st := NewRedisStorage(rdb, "storefront:state:")
	require.NoError(t, st.Set(context.Background(), "commerce-store", []byte("{}")))

	got, err := mr.Get("storefront:state:commerce-store")
	require.NoError(t, err)
	assert.Equal(t, "{}", got)
}

func TestMemoryStorage_CopiesValues(t *testing.T) {
	st := NewMemoryStorage()
	buf := []byte("abc")
	require.NoError(t, st.Set(context.Background(), "k", buf))
	buf[0] = 'x'

	val, err := st.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(val))
}

func TestNoopStorage(t *testing.T) {
	st := NewNoopStorage()
	require.NoError(t, st.Set(context.Background(), "k", []byte("v")))

	val, err := st.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, val)
	assert.False(t, st.Available())
}
