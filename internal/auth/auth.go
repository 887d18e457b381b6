// Package auth reads the authenticated user cached locally by the login flow.
package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/commerce/internal/domain"
	"storefront/commerce/internal/storage"
)

const DefaultUserKey = "auth-user"

type StorageAuthenticator struct {
	storage storage.Storage
	key     string
}

func NewStorageAuthenticator(st storage.Storage, key string) *StorageAuthenticator {
	if key == "" {
		key = DefaultUserKey
	}
	return &StorageAuthenticator{
		storage: st,
		key:     key,
	}
}

// CurrentUser returns the cached user record, or nil if nobody is signed in.
func (a *StorageAuthenticator) CurrentUser(ctx context.Context) (*domain.UserProfile, error) {
	data, err := a.storage.Get(ctx, a.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read current user: %w", err)
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var user domain.UserProfile
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode current user: %w", err)
	}
	return &user, nil
}
