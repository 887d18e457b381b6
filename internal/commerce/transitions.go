// Package commerce holds the cart, wishlist, recently viewed and profile state.
//
// The functions in this file are pure: each takes a snapshot and returns a new one,
// leaving the input untouched. Store applies them and takes care of persistence.
package commerce

import (
	"time"

	"storefront/commerce/internal/domain"
)

// AddItem merges the incoming quantity into an existing line with the same id,
// or appends a new line.
func AddItem(s domain.State, item domain.CartItem) domain.State {
	next := s.Clone()
	for i := range next.Items {
		if next.Items[i].ID == item.ID {
			next.Items[i].Quantity += item.Quantity
			return next
		}
	}
	next.Items = append(next.Items, item)
	return next
}

func RemoveItem(s domain.State, id string) domain.State {
	next := s.Clone()
	items := next.Items[:0]
	for _, item := range next.Items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	next.Items = items
	return next
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less removes it.
func UpdateQuantity(s domain.State, id string, quantity int) domain.State {
	if quantity <= 0 {
		return RemoveItem(s, id)
	}
	next := s.Clone()
	for i := range next.Items {
		if next.Items[i].ID == id {
			next.Items[i].Quantity = quantity
		}
	}
	return next
}

func ClearCart(s domain.State) domain.State {
	next := s.Clone()
	next.Items = []domain.CartItem{}
	return next
}

func TotalItems(s domain.State) int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

func TotalPrice(s domain.State) float64 {
	total := 0.0
	for _, item := range s.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// AddToWishlist appends the entry stamped with now. Adding a product that is
// already present leaves the existing entry, including its AddedAt, unchanged.
func AddToWishlist(s domain.State, entry domain.WishlistEntry, now time.Time) domain.State {
	next := s.Clone()
	if IsInWishlist(next, entry.ProductID) {
		return next
	}
	entry.AddedAt = now
	next.Wishlist = append(next.Wishlist, entry)
	return next
}

func RemoveFromWishlist(s domain.State, productID string) domain.State {
	next := s.Clone()
	entries := next.Wishlist[:0]
	for _, entry := range next.Wishlist {
		if entry.ProductID != productID {
			entries = append(entries, entry)
		}
	}
	next.Wishlist = entries
	return next
}

func IsInWishlist(s domain.State, productID string) bool {
	for _, entry := range s.Wishlist {
		if entry.ProductID == productID {
			return true
		}
	}
	return false
}

// AddRecentlyViewed moves the product to the front of the list and keeps at most
// domain.MaxRecentlyViewed entries.
func AddRecentlyViewed(s domain.State, entry domain.RecentlyViewedEntry) domain.State {
	next := s.Clone()
	viewed := make([]domain.RecentlyViewedEntry, 0, len(next.RecentlyViewed)+1)
	viewed = append(viewed, entry)
	for _, existing := range next.RecentlyViewed {
		if existing.ProductID != entry.ProductID {
			viewed = append(viewed, existing)
		}
	}
	if len(viewed) > domain.MaxRecentlyViewed {
		viewed = viewed[:domain.MaxRecentlyViewed]
	}
	next.RecentlyViewed = viewed
	return next
}

func ClearRecentlyViewed(s domain.State) domain.State {
	next := s.Clone()
	next.RecentlyViewed = []domain.RecentlyViewedEntry{}
	return next
}

// SetUserProfile replaces the profile wholesale. A nil profile signs the user out.
func SetUserProfile(s domain.State, profile *domain.UserProfile) domain.State {
	next := s.Clone()
	next.Profile = profile.Clone()
	return next
}

// AddAddress appends an address to the profile. The first address always becomes
// the default; a later address passed with IsDefault takes the default over.
// Without a profile there is nothing to attach to and the state is returned as is.
func AddAddress(s domain.State, address domain.Address) domain.State {
	next := s.Clone()
	if next.Profile == nil {
		return next
	}

	profile := next.Profile
	if len(profile.Addresses) == 0 {
		address.IsDefault = true
	}
	if address.IsDefault {
		markDefault(profile, address.ID)
	}
	profile.Addresses = append(profile.Addresses, address)
	return next
}

// RemoveAddress deletes the address. DefaultAddressID is left as is even when it
// pointed at the removed address; callers reassign with SetDefaultAddress.
func RemoveAddress(s domain.State, id string) domain.State {
	next := s.Clone()
	if next.Profile == nil {
		return next
	}

	addresses := next.Profile.Addresses[:0]
	for _, address := range next.Profile.Addresses {
		if address.ID != id {
			addresses = append(addresses, address)
		}
	}
	next.Profile.Addresses = addresses
	return next
}

// SetDefaultAddress points DefaultAddressID at id and moves the IsDefault flag.
// The id is not checked against the address list.
func SetDefaultAddress(s domain.State, id string) domain.State {
	next := s.Clone()
	if next.Profile == nil {
		return next
	}
	markDefault(next.Profile, id)
	return next
}

// DefaultAddress returns the address DefaultAddressID refers to, or nil when it is
// unset or dangling.
func DefaultAddress(s domain.State) *domain.Address {
	if s.Profile == nil || s.Profile.DefaultAddressID == "" {
		return nil
	}
	for _, address := range s.Profile.Addresses {
		if address.ID == s.Profile.DefaultAddressID {
			return &address
		}
	}
	return nil
}

func markDefault(profile *domain.UserProfile, id string) {
	profile.DefaultAddressID = id
	for i := range profile.Addresses {
		profile.Addresses[i].IsDefault = profile.Addresses[i].ID == id
	}
}
