package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emedico/backend/internal/domain/session"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/infrastructure/auth"
	"github.com/emedico/backend/internal/infrastructure/config"
	"github.com/emedico/backend/internal/infrastructure/persistence/memory"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory creates the Redis-backed stores, falling back to in-process
// implementations when Redis is not configured or unreachable.
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool

	once      sync.Once
	client    *redis.Client
	clientErr error
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithClient injects an existing client instead of dialing cfg
func WithClient(client *redis.Client) FactoryOption {
	return func(f *Factory) {
		f.once.Do(func() { f.client = client })
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Client returns the shared Redis client, connecting on first use
func (f *Factory) Client(ctx context.Context) (*redis.Client, error) {
	f.once.Do(func() {
		if !f.redisConfig.Enabled() {
			f.clientErr = fmt.Errorf("redis host not configured")
			return
		}
		f.client, f.clientErr = NewRedisClient(ctx, f.redisConfig)
	})
	return f.client, f.clientErr
}

// CreateIdempotencyStore returns the checkout idempotency store
func (f *Factory) CreateIdempotencyStore(ctx context.Context) (shared.IdempotencyStore, error) {
	client, err := f.redisOrFallback(ctx, "idempotency")
	if err != nil {
		return nil, err
	}
	if client == nil {
		return NewInMemoryIdempotencyStore(), nil
	}
	return NewRedisIdempotencyStore(client, ""), nil
}

// CreatePreferenceStore returns the client preference store
func (f *Factory) CreatePreferenceStore(ctx context.Context) (session.PreferenceStore, error) {
	client, err := f.redisOrFallback(ctx, "preference")
	if err != nil {
		return nil, err
	}
	if client == nil {
		return memory.NewPreferenceStore(), nil
	}
	return NewRedisPreferenceStore(client), nil
}

// CreateStateRepository returns the session state store; ttl is the idle timeout
func (f *Factory) CreateStateRepository(ctx context.Context, ttl time.Duration) (session.StateRepository, error) {
	client, err := f.redisOrFallback(ctx, "session state")
	if err != nil {
		return nil, err
	}
	if client == nil {
		return memory.NewStateRepository(), nil
	}
	return NewRedisStateRepository(client, ttl), nil
}

// CreateTokenBlacklist returns the store of revoked token IDs
func (f *Factory) CreateTokenBlacklist(ctx context.Context) (auth.TokenBlacklist, error) {
	client, err := f.redisOrFallback(ctx, "token blacklist")
	if err != nil {
		return nil, err
	}
	if client == nil {
		return auth.NewInMemoryTokenBlacklist(), nil
	}
	return auth.NewRedisTokenBlacklist(client), nil
}

// Close closes the shared client if one was opened
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}

// redisOrFallback returns the client, or nil when the caller should use
// an in-memory store.
func (f *Factory) redisOrFallback(ctx context.Context, store string) (*redis.Client, error) {
	client, err := f.Client(ctx)
	if err == nil {
		f.logger.Info("Using Redis store", zap.String("store", store))
		return client, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for %s store but unavailable: %w", store, err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory store. "+
		"State is not shared between replicas.",
		zap.String("store", store),
		zap.Error(err),
	)
	return nil, nil
}
