package memory

import (
	"context"
	"sync"

	"github.com/emedico/backend/internal/domain/cart"
	"github.com/emedico/backend/internal/domain/shared"
)

// CartRepository is an in-memory cart.CartRepository
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string]cart.Cart
}

// NewCartRepository creates an empty CartRepository
func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]cart.Cart)}
}

// FindBySession returns a copy of the session's cart
func (r *CartRepository) FindBySession(_ context.Context, sessionID string) (*cart.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.carts[sessionID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneCart(&stored), nil
}

// Save stores c. An existing cart is only replaced when c carries the
// stored version, after which both are advanced by one.
func (r *CartRepository) Save(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[c.SessionID]
	if ok {
		if stored.ID != c.ID || stored.Version != c.Version {
			return shared.ErrConcurrencyConflict
		}
		c.IncrementVersion()
	}
	r.carts[c.SessionID] = *cloneCart(c)
	return nil
}

// DeleteBySession removes the session's cart
func (r *CartRepository) DeleteBySession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

func cloneCart(c *cart.Cart) *cart.Cart {
	out := *c
	out.Lines = c.Snapshot()
	out.ClearDomainEvents()
	return &out
}

var _ cart.CartRepository = (*CartRepository)(nil)
