package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"storefront/commerce/internal/domain"
	"storefront/commerce/internal/storage"
)

const DefaultStateKey = "commerce-store"

// UserSource is the auth collaborator: a local read of the currently authenticated user.
// It returns nil when nobody is signed in.
type UserSource interface {
	CurrentUser(ctx context.Context) (*domain.UserProfile, error)
}

// Listener is notified after every mutation with the mutation name and the new snapshot.
type Listener func(reason string, state domain.State)

// Store owns the commerce snapshot. Every mutation replaces the snapshot, writes the
// whole state to storage and notifies listeners. Persistence failures are logged and
// absorbed; mutations never fail.
type Store struct {
	mutex    sync.RWMutex
	state    domain.State
	storage  storage.Storage
	users    UserSource
	clock    clock.Clock
	stateKey string

	listenersMutex sync.Mutex
	listeners      map[int]Listener
	nextListenerID int
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithStateKey(key string) Option {
	return func(s *Store) { s.stateKey = key }
}

// NewStore creates an empty store. A nil storage behaves like storage.NewNoopStorage.
func NewStore(st storage.Storage, users UserSource, opts ...Option) *Store {
	if st == nil {
		st = storage.NewNoopStorage()
	}
	s := &Store{
		state:     domain.State{}.Clone(),
		storage:   st,
		users:     users,
		clock:     clock.New(),
		stateKey:  DefaultStateKey,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate replaces the in-memory state with what storage holds, if anything.
func (s *Store) Hydrate(ctx context.Context) error {
	data, err := s.storage.Get(ctx, s.stateKey)
	if err != nil {
		return fmt.Errorf("failed to load commerce state: %w", err)
	}
	if data == nil {
		return nil
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to decode commerce state: %w", err)
	}

	s.mutex.Lock()
	s.state = state.Clone()
	s.mutex.Unlock()

	log.Debugf("Hydrated commerce state: %d cart items, %d wishlist entries", len(state.Items), len(state.Wishlist))
	return nil
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(listener Listener) func() {
	s.listenersMutex.Lock()
	defer s.listenersMutex.Unlock()

	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = listener

	return func() {
		s.listenersMutex.Lock()
		defer s.listenersMutex.Unlock()
		delete(s.listeners, id)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.State {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.state.Clone()
}

func (s *Store) AddItem(ctx context.Context, item domain.CartItem) domain.State {
	return s.apply(ctx, "add_item", func(st domain.State) domain.State {
		return AddItem(st, item)
	})
}

func (s *Store) RemoveItem(ctx context.Context, id string) domain.State {
	return s.apply(ctx, "remove_item", func(st domain.State) domain.State {
		return RemoveItem(st, id)
	})
}

func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) domain.State {
	return s.apply(ctx, "update_quantity", func(st domain.State) domain.State {
		return UpdateQuantity(st, id, quantity)
	})
}

func (s *Store) ClearCart(ctx context.Context) domain.State {
	return s.apply(ctx, "clear_cart", ClearCart)
}

func (s *Store) TotalItems() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return TotalItems(s.state)
}

func (s *Store) TotalPrice() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return TotalPrice(s.state)
}

func (s *Store) AddToWishlist(ctx context.Context, entry domain.WishlistEntry) domain.State {
	now := s.clock.Now()
	return s.apply(ctx, "add_to_wishlist", func(st domain.State) domain.State {
		return AddToWishlist(st, entry, now)
	})
}

func (s *Store) RemoveFromWishlist(ctx context.Context, productID string) domain.State {
	return s.apply(ctx, "remove_from_wishlist", func(st domain.State) domain.State {
		return RemoveFromWishlist(st, productID)
	})
}

func (s *Store) IsInWishlist(productID string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return IsInWishlist(s.state, productID)
}

func (s *Store) AddRecentlyViewed(ctx context.Context, entry domain.RecentlyViewedEntry) domain.State {
	return s.apply(ctx, "add_recently_viewed", func(st domain.State) domain.State {
		return AddRecentlyViewed(st, entry)
	})
}

func (s *Store) ClearRecentlyViewed(ctx context.Context) domain.State {
	return s.apply(ctx, "clear_recently_viewed", ClearRecentlyViewed)
}

func (s *Store) SetUserProfile(ctx context.Context, profile *domain.UserProfile) domain.State {
	return s.apply(ctx, "set_user_profile", func(st domain.State) domain.State {
		return SetUserProfile(st, profile)
	})
}

// LoadUserFromStorage asks the auth collaborator for the current user once and seeds
// the profile with it when no profile is set yet. It does nothing when storage is
// unavailable, there is no collaborator, or the collaborator fails.
func (s *Store) LoadUserFromStorage(ctx context.Context) domain.State {
	if s.users == nil || !s.storage.Available() {
		log.Debug("Skipping user load: no storage available")
		return s.Snapshot()
	}

	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		log.Warnf("⚠️ Failed to read current user: %v", err)
		return s.Snapshot()
	}
	if user == nil {
		return s.Snapshot()
	}

	// The profile may have been set while the collaborator was being read.
	return s.update(ctx, "load_user", func(st domain.State) (domain.State, bool) {
		if st.Profile != nil {
			return st, false
		}
		return SetUserProfile(st, user), true
	})
}

func (s *Store) AddAddress(ctx context.Context, address domain.Address) domain.State {
	return s.apply(ctx, "add_address", func(st domain.State) domain.State {
		return AddAddress(st, address)
	})
}

func (s *Store) RemoveAddress(ctx context.Context, id string) domain.State {
	return s.apply(ctx, "remove_address", func(st domain.State) domain.State {
		return RemoveAddress(st, id)
	})
}

func (s *Store) SetDefaultAddress(ctx context.Context, id string) domain.State {
	return s.apply(ctx, "set_default_address", func(st domain.State) domain.State {
		return SetDefaultAddress(st, id)
	})
}

func (s *Store) DefaultAddress() *domain.Address {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return DefaultAddress(s.state)
}

// apply runs a transition under the write lock and persists inside it, so storage
// sees writes in mutation order. Listeners run after the lock is released.
func (s *Store) apply(ctx context.Context, reason string, transition func(domain.State) domain.State) domain.State {
	return s.update(ctx, reason, func(st domain.State) (domain.State, bool) {
		return transition(st), true
	})
}

// update is apply for transitions that can decline to change the state. A declined
// transition is neither persisted nor reported to listeners.
func (s *Store) update(ctx context.Context, reason string, transition func(domain.State) (domain.State, bool)) domain.State {
	s.mutex.Lock()
	next, changed := transition(s.state)
	if !changed {
		current := s.state.Clone()
		s.mutex.Unlock()
		return current
	}
	s.state = next
	s.persist(ctx, next)
	s.mutex.Unlock()

	log.Debugf("Applied %s: %d cart items, %d wishlist entries", reason, len(next.Items), len(next.Wishlist))

	s.listenersMutex.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMutex.Unlock()

	for _, l := range listeners {
		l(reason, next.Clone())
	}

	return next.Clone()
}

func (s *Store) persist(ctx context.Context, state domain.State) {
	data, err := json.Marshal(state)
	if err != nil {
		log.Errorf("❌ Failed to encode commerce state: %v", err)
		return
	}
	if err := s.storage.Set(ctx, s.stateKey, data); err != nil {
		log.Errorf("❌ Failed to persist commerce state: %v", err)
	}
}
