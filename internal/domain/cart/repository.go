package cart

import "context"

// CartRepository persists session carts
type CartRepository interface {
	// FindBySession returns the cart of a session or shared.ErrNotFound
	FindBySession(ctx context.Context, sessionID string) (*Cart, error)
	// Save inserts or updates the cart. Implementations reject stale
	// versions with shared.ErrConcurrencyConflict.
	Save(ctx context.Context, c *Cart) error
	// DeleteBySession removes the cart of a session
	DeleteBySession(ctx context.Context, sessionID string) error
}
