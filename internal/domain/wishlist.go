package domain

import "time"

// WishlistEntry represents a product saved for later. At most one entry exists per ProductID.
type WishlistEntry struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}
