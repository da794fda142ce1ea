package order

import (
	"context"

	"github.com/emedico/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository persists orders
type OrderRepository interface {
	// Save inserts or updates an order
	Save(ctx context.Context, o *Order) error
	// FindByID returns an order or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindBySession lists the orders placed from a session, newest first
	FindBySession(ctx context.Context, sessionID string, filter shared.Filter) ([]Order, int64, error)
}
