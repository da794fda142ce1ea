package memory

import (
	"context"
	"sync"

	"github.com/emedico/backend/internal/domain/session"
)

// PreferenceStore is an in-memory session.PreferenceStore
type PreferenceStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewPreferenceStore creates an empty PreferenceStore
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{values: make(map[string]map[string]string)}
}

// Get returns the value stored for a client's key
func (s *PreferenceStore) Get(_ context.Context, clientID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[clientID][key]
	return value, ok, nil
}

// Set stores value under a client's key
func (s *PreferenceStore) Set(_ context.Context, clientID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[clientID] == nil {
		s.values[clientID] = make(map[string]string)
	}
	s.values[clientID][key] = value
	return nil
}

var _ session.PreferenceStore = (*PreferenceStore)(nil)
