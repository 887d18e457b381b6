package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/commerce/internal/domain"
	"storefront/commerce/internal/storage"
)

func TestStorageAuthenticator_CurrentUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		stored  string
		want    *domain.UserProfile
		wantErr bool
	}{
		{name: "nobody signed in"},
		{name: "explicit null", stored: "null"},
		{
			name:   "cached user",
			stored: `{"id":"u1","email":"u1@example.com","name":"Ada","addresses":[{"id":"a1","city":"Oslo"}],"default_address_id":"a1"}`,
			want: &domain.UserProfile{
				ID:               "u1",
				Email:            "u1@example.com",
				Name:             "Ada",
				Addresses:        []domain.Address{{ID: "a1", City: "Oslo"}},
				DefaultAddressID: "a1",
			},
		},
		{name: "corrupt record", stored: "{", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := storage.NewMemoryStorage()
			if tt.stored != "" {
				require.NoError(t, st.Set(ctx, DefaultUserKey, []byte(tt.stored)))
			}

			got, err := NewStorageAuthenticator(st, "").CurrentUser(ctx)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
