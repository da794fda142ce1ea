package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emedico/backend/internal/domain/session"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisStateRepository stores session shell state as JSON. Each save
// refreshes the idle TTL, so abandoned sessions expire on their own.
type RedisStateRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStateRepository creates a RedisStateRepository. A ttl of zero
// keeps states until deleted.
func NewRedisStateRepository(client *redis.Client, ttl time.Duration) *RedisStateRepository {
	return &RedisStateRepository{client: client, keyPrefix: "emedico:session:", ttl: ttl}
}

// FindByID loads a session state
func (r *RedisStateRepository) FindByID(ctx context.Context, sessionID string) (session.State, error) {
	raw, err := r.client.Get(ctx, r.keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.State{}, shared.ErrNotFound
	}
	if err != nil {
		return session.State{}, fmt.Errorf("failed to load session state: %w", err)
	}

	var state session.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return session.State{}, fmt.Errorf("failed to decode session state: %w", err)
	}
	return state, nil
}

// Save stores a session state
func (r *RedisStateRepository) Save(ctx context.Context, state session.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	if err := r.client.Set(ctx, r.keyPrefix+state.SessionID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}
	return nil
}

// Delete removes a session state
func (r *RedisStateRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete session state: %w", err)
	}
	return nil
}

var _ session.StateRepository = (*RedisStateRepository)(nil)
