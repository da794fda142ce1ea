package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/emedico/backend/internal/domain/session"
	"github.com/emedico/backend/internal/domain/shared"
)

// StateRepository is an in-memory session.StateRepository
type StateRepository struct {
	mu     sync.RWMutex
	states map[string]session.State
}

// NewStateRepository creates an empty StateRepository
func NewStateRepository() *StateRepository {
	return &StateRepository{states: make(map[string]session.State)}
}

// FindByID returns the stored state
func (r *StateRepository) FindByID(_ context.Context, sessionID string) (session.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[sessionID]
	if !ok {
		return session.State{}, shared.ErrNotFound
	}
	return state, nil
}

// Save stores state
func (r *StateRepository) Save(_ context.Context, state session.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.SessionID] = state
	return nil
}

// Delete forgets a session
func (r *StateRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, sessionID)
	return nil
}

// IdleSince lists sessions last updated before cutoff
func (r *StateRepository) IdleSince(_ context.Context, cutoff time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, state := range r.states {
		if state.UpdatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

var _ session.StateRepository = (*StateRepository)(nil)
