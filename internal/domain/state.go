package domain

// State is the persisted commerce snapshot: cart, wishlist, recently viewed and profile.
type State struct {
	Items          []CartItem            `json:"items"`
	Wishlist       []WishlistEntry       `json:"wishlist"`
	RecentlyViewed []RecentlyViewedEntry `json:"recently_viewed"`
	Profile        *UserProfile          `json:"profile"`
}

// Clone returns a deep copy so a snapshot can be handed out without sharing slices.
func (s State) Clone() State {
	return State{
		Items:          cloneSlice(s.Items),
		Wishlist:       cloneSlice(s.Wishlist),
		RecentlyViewed: cloneSlice(s.RecentlyViewed),
		Profile:        s.Profile.Clone(),
	}
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
