// Package session seeds the commerce profile from an already authenticated session.
package session

import (
	"context"

	log "github.com/sirupsen/logrus"

	"storefront/commerce/internal/domain"
)

type UserLoader interface {
	LoadUserFromStorage(ctx context.Context) domain.State
}

type Bootstrap struct {
	loader UserLoader
}

func NewBootstrap(loader UserLoader) *Bootstrap {
	return &Bootstrap{loader: loader}
}

// Run loads the signed-in user into the store. It is safe to call on every render:
// an existing profile is never overwritten. Returns the resulting profile, if any.
func (b *Bootstrap) Run(ctx context.Context) *domain.UserProfile {
	state := b.loader.LoadUserFromStorage(ctx)
	if state.Profile != nil {
		log.Infof("👤 Session bootstrapped for user %s", state.Profile.ID)
	} else {
		log.Debug("Session bootstrap found no authenticated user")
	}
	return state.Profile
}
