package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/emedico/backend/internal/domain/order"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository is an in-memory order.OrderRepository
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]order.Order
}

// NewOrderRepository creates an empty OrderRepository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[uuid.UUID]order.Order)}
}

// Save inserts o or replaces the stored order under version check
func (r *OrderRepository) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.orders[o.ID]; ok {
		if stored.Version != o.Version {
			return shared.ErrConcurrencyConflict
		}
		o.IncrementVersion()
	} else {
		for _, existing := range r.orders {
			if existing.OrderNumber == o.OrderNumber {
				return shared.ErrAlreadyExists
			}
		}
	}
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

// FindByID returns a copy of an order
func (r *OrderRepository) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := cloneOrder(&stored)
	return &out, nil
}

// FindBySession returns the session's orders, newest first
func (r *OrderRepository) FindBySession(_ context.Context, sessionID string, filter shared.Filter) ([]order.Order, int64, error) {
	r.mu.RLock()
	matched := make([]order.Order, 0)
	for _, o := range r.orders {
		if o.SessionID == sessionID {
			matched = append(matched, cloneOrder(&o))
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b order.Order) int {
		return b.PlacedAt.Compare(a.PlacedAt)
	})

	total := int64(len(matched))
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = shared.DefaultFilter().PageSize
	}
	start := min(filter.Offset(), len(matched))
	end := min(start+pageSize, len(matched))
	return matched[start:end], total, nil
}

func cloneOrder(o *order.Order) order.Order {
	out := *o
	out.Items = slices.Clone(o.Items)
	out.ClearDomainEvents()
	return out
}

var _ order.OrderRepository = (*OrderRepository)(nil)
