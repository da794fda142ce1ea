package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emedico/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyPrefix = "emedico:idempotency:"

// RedisIdempotencyStore implements IdempotencyStore using Redis.
// Replicas behind a load balancer share claims through it.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore creates a store on an existing client. The
// client is not closed by Close.
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultIdempotencyPrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Claim uses SET NX so exactly one caller takes the key. Losers read the
// winner's value back.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key, value string, ttl time.Duration) (string, bool, error) {
	fullKey := s.keyPrefix + key

	claimed, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if claimed {
		return value, true, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; try once more
		claimed, err = s.client.SetNX(ctx, fullKey, value, ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("failed to claim idempotency key: %w", err)
		}
		if claimed {
			return value, true, nil
		}
		existing, err = s.client.Get(ctx, fullKey).Result()
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return existing, false, nil
}

// Release deletes the key
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by the Factory
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
