package events

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"storefront/commerce/internal/commerce"
	"storefront/commerce/internal/domain"
	"storefront/commerce/internal/domain/event"
)

const publishTimeout = 5 * time.Second

// Forwarder turns store and category cache notifications into published events.
// Publish failures are logged; they never reach the mutation that triggered them.
type Forwarder struct {
	publisher Publisher
	clock     clock.Clock
}

func NewForwarder(publisher Publisher, c clock.Clock) *Forwarder {
	if c == nil {
		c = clock.New()
	}
	return &Forwarder{
		publisher: publisher,
		clock:     c,
	}
}

// OnStateChanged matches commerce.Listener.
func (f *Forwarder) OnStateChanged(reason string, state domain.State) {
	e := &event.StateChanged{
		Reason:             reason,
		TotalItems:         commerce.TotalItems(state),
		TotalPrice:         commerce.TotalPrice(state),
		WishlistSize:       len(state.Wishlist),
		RecentlyViewedSize: len(state.RecentlyViewed),
		OccurredAt:         f.clock.Now(),
	}
	if state.Profile != nil {
		e.ProfileID = state.Profile.ID
	}
	f.publish(e)
}

// OnCategoriesChanged matches category.Listener.
func (f *Forwarder) OnCategoriesChanged(action string, count int) {
	f.publish(&event.CategoriesChanged{
		Action:     action,
		Count:      count,
		OccurredAt: f.clock.Now(),
	})
}

func (f *Forwarder) publish(e event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if _, err := f.publisher.Publish(ctx, e); err != nil {
		log.Warnf("⚠️ Failed to publish %s: %v", e.EventType(), err)
	}
}
