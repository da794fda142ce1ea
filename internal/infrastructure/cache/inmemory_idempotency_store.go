package cache

import (
	"context"
	"sync"
	"time"

	"github.com/emedico/backend/internal/domain/shared"
)

const claimSweepInterval = 5 * time.Minute

type claim struct {
	value   string
	expires time.Time
}

func (c claim) live(now time.Time) bool { return now.Before(c.expires) }

// InMemoryIdempotencyStore keeps checkout and event claims in process memory.
// Claims do not survive a restart and are not shared between replicas.
type InMemoryIdempotencyStore struct {
	mu     sync.Mutex
	claims map[string]claim

	done   chan struct{}
	closed sync.Once
	swept  sync.WaitGroup
}

// NewInMemoryIdempotencyStore returns a store that drops expired claims in
// the background until Close.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		claims: map[string]claim{},
		done:   make(chan struct{}),
	}
	s.swept.Add(1)
	go s.sweepEvery(claimSweepInterval)
	return s
}

func (s *InMemoryIdempotencyStore) Claim(_ context.Context, key, value string, ttl time.Duration) (string, bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if held, ok := s.claims[key]; ok && held.live(now) {
		return held.value, false, nil
	}
	s.claims[key] = claim{value: value, expires: now.Add(ttl)}
	return value, true, nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.claims, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Further calls are no-ops.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closed.Do(func() {
		close(s.done)
		s.swept.Wait()
	})
	return nil
}

// Size reports how many claims are held, expired ones included
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claims)
}

func (s *InMemoryIdempotencyStore) sweepEvery(interval time.Duration) {
	defer s.swept.Done()
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-tick.C:
			s.sweep(now)
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, c := range s.claims {
		if !c.live(now) {
			delete(s.claims, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
