package domain

// MaxRecentlyViewed bounds the recently viewed list.
const MaxRecentlyViewed = 12

// RecentlyViewedEntry is a product the user looked at, kept most-recent-first.
type RecentlyViewedEntry struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
}
