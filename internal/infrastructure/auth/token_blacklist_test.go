package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/emedico/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		revoke      string
		ttl         time.Duration
		wait        time.Duration
		lookup      string
		wantRevoked bool
	}{
		{name: "logged out access token", revoke: "jti-access", ttl: time.Hour, lookup: "jti-access", wantRevoked: true},
		{name: "other tokens stay valid", revoke: "jti-access", ttl: time.Hour, lookup: "jti-other"},
		{name: "spent token is not recorded", revoke: "jti-spent", ttl: 0, lookup: "jti-spent"},
		{name: "entry lapses with its token", revoke: "jti-short", ttl: time.Millisecond, wait: 5 * time.Millisecond, lookup: "jti-short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := auth.NewInMemoryTokenBlacklist()
			require.NoError(t, list.Revoke(ctx, tt.revoke, tt.ttl))
			time.Sleep(tt.wait)

			revoked, err := list.IsRevoked(ctx, tt.lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRevoked, revoked)
		})
	}
}
