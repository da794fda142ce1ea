package cache

import (
	"context"
	"testing"
	"time"

	"github.com/emedico/backend/internal/infrastructure/auth"
	"github.com/emedico/backend/internal/infrastructure/config"
	"github.com/emedico/backend/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_FallsBackWithoutRedis(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(config.RedisConfig{})
	defer f.Close()

	idem, err := f.CreateIdempotencyStore(ctx)
	require.NoError(t, err)
	defer idem.Close()
	assert.IsType(t, &InMemoryIdempotencyStore{}, idem)

	prefs, err := f.CreatePreferenceStore(ctx)
	require.NoError(t, err)
	assert.IsType(t, &memory.PreferenceStore{}, prefs)

	states, err := f.CreateStateRepository(ctx, time.Hour)
	require.NoError(t, err)
	assert.IsType(t, &memory.StateRepository{}, states)

	blacklist, err := f.CreateTokenBlacklist(ctx)
	require.NoError(t, err)
	assert.IsType(t, &auth.InMemoryTokenBlacklist{}, blacklist)
}

func TestFactory_RequiresRedisWhenFallbackDisabled(t *testing.T) {
	f := NewFactory(config.RedisConfig{}, WithInMemoryFallback(false))

	_, err := f.CreateIdempotencyStore(context.Background())
	assert.ErrorContains(t, err, "redis required for idempotency store")
}
