package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/commerce/internal/domain"
	"storefront/commerce/internal/storage"
)

type stubUsers struct {
	user   *domain.UserProfile
	err    error
	calls  int
	onCall func()
}

func (s *stubUsers) CurrentUser(context.Context) (*domain.UserProfile, error) {
	s.calls++
	if s.onCall != nil {
		s.onCall()
	}
	return s.user, s.err
}

type failingStorage struct{ storage.Storage }

func (failingStorage) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func persisted(t *testing.T, st storage.Storage) domain.State {
	t.Helper()
	data, err := st.Get(context.Background(), DefaultStateKey)
	require.NoError(t, err)
	require.NotNil(t, data)

	var state domain.State
	require.NoError(t, json.Unmarshal(data, &state))
	return state
}

func TestStore_CartScenario(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	store := NewStore(st, nil)

	store.AddItem(ctx, domain.CartItem{ID: "p1", Name: "Mug", Price: 10, Quantity: 1})
	store.AddItem(ctx, domain.CartItem{ID: "p2", Name: "Plate", Price: 20, Quantity: 1})
	assert.InDelta(t, 30.0, store.TotalPrice(), 1e-9)

	store.RemoveItem(ctx, "p1")
	assert.InDelta(t, 20.0, store.TotalPrice(), 1e-9)

	state := store.ClearCart(ctx)
	assert.Empty(t, state.Items)
	assert.Equal(t, 0, store.TotalItems())
	assert.Empty(t, persisted(t, st).Items)
}

func TestStore_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	store := NewStore(st, nil)

	store.AddItem(ctx, domain.CartItem{ID: "p1", Price: 5, Quantity: 2})
	require.Len(t, persisted(t, st).Items, 1)

	store.UpdateQuantity(ctx, "p1", 0)
	assert.Empty(t, persisted(t, st).Items)

	store.AddRecentlyViewed(ctx, domain.RecentlyViewedEntry{ProductID: "p9"})
	assert.Len(t, persisted(t, st).RecentlyViewed, 1)
}

func TestStore_HydrateRestoresState(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()

	first := NewStore(st, nil)
	first.AddItem(ctx, domain.CartItem{ID: "p1", Price: 3, Quantity: 4})
	first.SetUserProfile(ctx, &domain.UserProfile{ID: "u1", Email: "u1@example.com"})

	second := NewStore(st, nil)
	require.NoError(t, second.Hydrate(ctx))

	assert.Equal(t, 4, second.TotalItems())
	require.NotNil(t, second.Snapshot().Profile)
	assert.Equal(t, "u1", second.Snapshot().Profile.ID)
}

func TestStore_HydrateRejectsCorruptState(t *testing.T) {
	st := storage.NewMemoryStorage()
	require.NoError(t, st.Set(context.Background(), DefaultStateKey, []byte("{not json")))

	err := NewStore(st, nil).Hydrate(context.Background())
	require.Error(t, err)
}

func TestStore_PersistenceFailureIsAbsorbed(t *testing.T) {
	store := NewStore(failingStorage{storage.NewMemoryStorage()}, nil)

	state := store.AddItem(context.Background(), domain.CartItem{ID: "p1", Quantity: 1})
	assert.Len(t, state.Items, 1)
	assert.Equal(t, 1, store.TotalItems())
}

func TestStore_WishlistUsesClock(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	store := NewStore(storage.NewMemoryStorage(), nil, WithClock(mock))

	store.AddToWishlist(ctx, domain.WishlistEntry{ProductID: "p1"})
	mock.Add(time.Hour)
	state := store.AddToWishlist(ctx, domain.WishlistEntry{ProductID: "p1"})

	require.Len(t, state.Wishlist, 1)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), state.Wishlist[0].AddedAt)
	assert.True(t, store.IsInWishlist("p1"))
}

func TestStore_SubscribersNotified(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStorage(), nil)

	var reasons []string
	unsubscribe := store.Subscribe(func(reason string, state domain.State) {
		reasons = append(reasons, reason)
	})

	store.AddItem(ctx, domain.CartItem{ID: "p1", Quantity: 1})
	store.ClearCart(ctx)
	unsubscribe()
	store.AddItem(ctx, domain.CartItem{ID: "p2", Quantity: 1})

	assert.Equal(t, []string{"add_item", "clear_cart"}, reasons)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := NewStore(storage.NewMemoryStorage(), nil)
	store.AddItem(context.Background(), domain.CartItem{ID: "p1", Quantity: 1})

	snap := store.Snapshot()
	snap.Items[0].Quantity = 99

	assert.Equal(t, 1, store.TotalItems())
}

func TestStore_LoadUserFromStorage(t *testing.T) {
	ctx := context.Background()
	user := &domain.UserProfile{ID: "u1", Email: "u1@example.com"}

	t.Run("seeds empty profile", func(t *testing.T) {
		users := &stubUsers{user: user}
		store := NewStore(storage.NewMemoryStorage(), users)

		state := store.LoadUserFromStorage(ctx)
		require.NotNil(t, state.Profile)
		assert.Equal(t, "u1", state.Profile.ID)
		assert.Equal(t, 1, users.calls)
	})

	t.Run("keeps existing profile", func(t *testing.T) {
		users := &stubUsers{user: user}
		store := NewStore(storage.NewMemoryStorage(), users)
		store.SetUserProfile(ctx, &domain.UserProfile{ID: "existing"})

		state := store.LoadUserFromStorage(ctx)
		assert.Equal(t, "existing", state.Profile.ID)
		assert.Equal(t, 1, users.calls)
	})

	t.Run("profile set while reading user", func(t *testing.T) {
		st := storage.NewMemoryStorage()
		users := &stubUsers{user: user}
		store := NewStore(st, users)
		users.onCall = func() {
			store.SetUserProfile(ctx, &domain.UserProfile{ID: "racer"})
		}

		var reasons []string
		store.Subscribe(func(reason string, _ domain.State) {
			reasons = append(reasons, reason)
		})

		state := store.LoadUserFromStorage(ctx)
		require.NotNil(t, state.Profile)
		assert.Equal(t, "racer", state.Profile.ID)
		assert.Equal(t, []string{"set_user_profile"}, reasons)
		assert.Equal(t, "racer", persisted(t, st).Profile.ID)
	})

	t.Run("no signed in user", func(t *testing.T) {
		store := NewStore(storage.NewMemoryStorage(), &stubUsers{})
		assert.Nil(t, store.LoadUserFromStorage(ctx).Profile)
	})

	t.Run("collaborator error absorbed", func(t *testing.T) {
		store := NewStore(storage.NewMemoryStorage(), &stubUsers{err: errors.New("corrupt record")})
		assert.Nil(t, store.LoadUserFromStorage(ctx).Profile)
	})

	t.Run("storage unavailable", func(t *testing.T) {
		users := &stubUsers{user: user}
		store := NewStore(storage.NewNoopStorage(), users)

		assert.Nil(t, store.LoadUserFromStorage(ctx).Profile)
		assert.Equal(t, 0, users.calls)
	})

	t.Run("no collaborator", func(t *testing.T) {
		store := NewStore(nil, nil)
		assert.NotPanics(t, func() { store.LoadUserFromStorage(ctx) })
	})
}

func TestStore_Addresses(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStorage(), nil)
	store.SetUserProfile(ctx, &domain.UserProfile{ID: "u1"})

	store.AddAddress(ctx, domain.Address{ID: "a1", Street: "1 Main St"})
	store.AddAddress(ctx, domain.Address{ID: "a2", Street: "2 Side St"})
	require.NotNil(t, store.DefaultAddress())
	assert.Equal(t, "a1", store.DefaultAddress().ID)

	store.RemoveAddress(ctx, "a1")
	assert.Nil(t, store.DefaultAddress())

	state := store.SetDefaultAddress(ctx, "a2")
	assert.Equal(t, "a2", state.Profile.DefaultAddressID)
	assert.Equal(t, "a2", store.DefaultAddress().ID)
}
