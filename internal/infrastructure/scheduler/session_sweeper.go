// Package scheduler runs periodic background maintenance for the storefront.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// IdleFinder lists sessions whose state has not changed since cutoff
type IdleFinder interface {
	IdleSince(ctx context.Context, cutoff time.Time) ([]string, error)
}

// SessionCloser ends a session and releases what it owns
type SessionCloser interface {
	Delete(ctx context.Context, sessionID string) error
}

// SweeperConfig holds configuration for the idle session sweeper
type SweeperConfig struct {
	// IdleTimeout is how long a session may sit unchanged
	IdleTimeout time.Duration
	// CheckInterval is how often idle sessions are collected
	CheckInterval time.Duration
}

// DefaultSweeperConfig returns default sweeper configuration
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		IdleTimeout:   2 * time.Hour,
		CheckInterval: time.Minute,
	}
}

// SessionSweeper closes sessions that have been idle longer than the
// configured timeout. Closing goes through the session service so chat
// rooms, carts and prescription images are released with the state.
type SessionSweeper struct {
	config SweeperConfig
	finder IdleFinder
	closer SessionCloser
	logger *zap.Logger
	now    func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSessionSweeper creates a new sweeper
func NewSessionSweeper(config SweeperConfig, finder IdleFinder, closer SessionCloser, logger *zap.Logger) *SessionSweeper {
	defaults := DefaultSweeperConfig()
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = defaults.IdleTimeout
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	return &SessionSweeper{
		config: config,
		finder: finder,
		closer: closer,
		logger: logger,
		now:    time.Now,
	}
}

// Start starts the sweep loop
func (s *SessionSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Session sweeper started",
		zap.Duration("idle_timeout", s.config.IdleTimeout),
		zap.Duration("check_interval", s.config.CheckInterval),
	)
	return nil
}

// Stop stops the sweep loop, waiting for an in-flight sweep until ctx ends
func (s *SessionSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Session sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SessionSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep closes every idle session once and returns how many were closed
func (s *SessionSweeper) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.config.IdleTimeout)
	ids, err := s.finder.IdleSince(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to list idle sessions", zap.Error(err))
		return 0
	}

	closed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if err := s.closer.Delete(ctx, id); err != nil {
			s.logger.Warn("Failed to close idle session",
				zap.String("session_id", id),
				zap.Error(err),
			)
			continue
		}
		closed++
	}

	if closed > 0 {
		s.logger.Info("Idle sessions closed", zap.Int("count", closed))
	}
	return closed
}
