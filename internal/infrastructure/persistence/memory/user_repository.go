package memory

import (
	"context"
	"sync"

	"github.com/emedico/backend/internal/domain/identity"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository is an in-memory identity.UserRepository
type UserRepository struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]identity.User
	byEmail map[string]uuid.UUID
}

// NewUserRepository creates an empty UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[uuid.UUID]identity.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create stores a new user
func (r *UserRepository) Create(_ context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := identity.NormalizeEmail(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return shared.ErrAlreadyExists
	}
	if _, taken := r.users[user.ID]; taken {
		return shared.ErrAlreadyExists
	}
	stored := *user
	stored.ClearDomainEvents()
	r.users[user.ID] = stored
	r.byEmail[email] = user.ID
	return nil
}

// Update replaces a stored user under version check
func (r *UserRepository) Update(_ context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != user.Version {
		return shared.ErrConcurrencyConflict
	}
	user.IncrementVersion()
	next := *user
	next.ClearDomainEvents()
	r.users[user.ID] = next
	return nil
}

// FindByID returns a copy of a user
func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &stored, nil
}

// FindByEmail returns a copy of the user registered under email
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[identity.NormalizeEmail(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	stored := r.users[id]
	return &stored, nil
}

// ExistsByEmail reports whether email is registered
func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[identity.NormalizeEmail(email)]
	return ok, nil
}

var _ identity.UserRepository = (*UserRepository)(nil)
