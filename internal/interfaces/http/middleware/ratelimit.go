package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/emedico/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter decides whether a request keyed by key may proceed.
// Implementations: RateLimiter (in process) and cache.RedisRateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Limit() int
}

// RateLimiter is a fixed window limiter kept in process memory
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	tokens  int
	resetAt time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, w time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  w,
		stop:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Close stops the cleanup loop
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(2 * rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, w := range rl.clients {
				if now.After(w.resetAt) {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Limit returns the number of requests allowed per window
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// Allow consumes one token for key
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.clients[key]
	if !ok || !now.Before(w.resetAt) {
		rl.clients[key] = &window{tokens: rl.limit - 1, resetAt: now.Add(rl.window)}
		return true, rl.limit - 1, nil
	}
	if w.tokens > 0 {
		w.tokens--
		return true, w.tokens, nil
	}
	return false, 0, nil
}

// RateLimitConfig configures RateLimit
type RateLimitConfig struct {
	Limiter Limiter
	// KeyFunc defaults to ClientKey
	KeyFunc func(*gin.Context) string
	Code    string
	Message string
	Logger  *zap.Logger
}

// ClientKey keys requests by client ID, falling back to the remote IP
func ClientKey(c *gin.Context) string {
	if id := GetClientID(c); id != "" {
		return "client:" + id
	}
	return "ip:" + c.ClientIP()
}

// IPKey keys requests by remote IP
func IPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// RateLimit limits requests per client
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return RateLimitWithConfig(RateLimitConfig{Limiter: limiter})
}

// AuthRateLimit applies the stricter login limit, keyed by IP
func AuthRateLimit(limiter Limiter) gin.HandlerFunc {
	return RateLimitWithConfig(RateLimitConfig{
		Limiter: limiter,
		KeyFunc: func(c *gin.Context) string { return "auth:" + IPKey(c) },
		Message: "Too many authentication attempts. Please try again later.",
	})
}

// RateLimitWithConfig returns a rate limiting middleware. Limiter errors fail
// open so a cache outage never takes the storefront down.
func RateLimitWithConfig(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientKey
	}
	if cfg.Code == "" {
		cfg.Code = dto.ErrCodeRateLimited
	}
	if cfg.Message == "" {
		cfg.Message = "Too many requests. Please try again later."
	}
	limit := strconv.Itoa(cfg.Limiter.Limit())

	return func(c *gin.Context) {
		allowed, remaining, err := cfg.Limiter.Allow(c.Request.Context(), cfg.KeyFunc(c))
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Rate limiter unavailable", zap.Error(err))
			}
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			abortWithError(c, http.StatusTooManyRequests, cfg.Code, cfg.Message)
			return
		}
		c.Next()
	}
}
