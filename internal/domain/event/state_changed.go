package event

import "time"

type StateChanged struct {
	Reason             string    `json:"reason"`               // Mutation that produced the snapshot, e.g. "add_item"
	TotalItems         int       `json:"total_items"`          // Sum of cart quantities
	TotalPrice         float64   `json:"total_price"`          // Sum of price * quantity
	WishlistSize       int       `json:"wishlist_size"`        // Number of wishlist entries
	RecentlyViewedSize int       `json:"recently_viewed_size"` // Number of recently viewed entries
	ProfileID          string    `json:"profile_id,omitempty"` // Empty when no user is set
	OccurredAt         time.Time `json:"occurred_at"`
}

func (e *StateChanged) EventType() string {
	return "StateChanged"
}

func (e *StateChanged) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}
