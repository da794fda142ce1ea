package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Claim(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		value, claimed, err := store.Claim(ctx, "key-1", "order-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.Equal(t, "order-1", value)
	})

	t.Run("second claim returns the first value", func(t *testing.T) {
		value, claimed, err := store.Claim(ctx, "key-1", "order-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, claimed)
		assert.Equal(t, "order-1", value)
	})

	t.Run("claim is possible again after expiration", func(t *testing.T) {
		_, claimed, err := store.Claim(ctx, "key-2", "a", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, claimed)

		time.Sleep(20 * time.Millisecond)

		value, claimed, err := store.Claim(ctx, "key-2", "b", time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed, "expired key should be claimable")
		assert.Equal(t, "b", value)
	})
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, claimed, err := store.Claim(ctx, "key", "first", time.Hour)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, store.Release(ctx, "key"))
	assert.Equal(t, 0, store.Size())

	value, claimed, err := store.Claim(ctx, "key", "retry", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, "retry", value)

	assert.NoError(t, store.Release(ctx, "never-claimed"))
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const workers = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, claimed, err := store.Claim(ctx, "shared", "v", time.Hour)
			assert.NoError(t, err)
			if claimed {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one claim should win")
}

func TestInMemoryIdempotencyStore_SweepDropsExpiredClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	_, _, err := store.Claim(ctx, "short", "v", time.Millisecond)
	require.NoError(t, err)
	_, _, err = store.Claim(ctx, "long", "v", time.Hour)
	require.NoError(t, err)

	store.sweep(time.Now().Add(time.Second))

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
