package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/emedico/backend/internal/domain/session"
	"github.com/redis/go-redis/v9"
)

// RedisPreferenceStore keeps each client's preferences in one Redis hash
type RedisPreferenceStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisPreferenceStore creates a RedisPreferenceStore
func NewRedisPreferenceStore(client *redis.Client) *RedisPreferenceStore {
	return &RedisPreferenceStore{client: client, keyPrefix: "emedico:prefs:"}
}

// Get returns the value stored for a client's key
func (s *RedisPreferenceStore) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.keyPrefix+clientID, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference: %w", err)
	}
	return value, true, nil
}

// Set writes value under a client's key
func (s *RedisPreferenceStore) Set(ctx context.Context, clientID, key, value string) error {
	if err := s.client.HSet(ctx, s.keyPrefix+clientID, key, value).Err(); err != nil {
		return fmt.Errorf("failed to write preference: %w", err)
	}
	return nil
}

var _ session.PreferenceStore = (*RedisPreferenceStore)(nil)
