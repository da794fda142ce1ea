package cart

import "github.com/emedico/backend/internal/domain/shared"

// AggregateTypeCart is the aggregate type of Cart events
const AggregateTypeCart = "Cart"

// Cart event types
const (
	EventTypeCartItemAdded   = "CartItemAdded"
	EventTypeCartItemRemoved = "CartItemRemoved"
	EventTypeCartCleared     = "CartCleared"
)

// CartItemAddedEvent is published when units are added to a cart
type CartItemAddedEvent struct {
	shared.BaseDomainEvent
	MedicineID string `json:"medicine_id"`
	Quantity   int    `json:"quantity"`
}

// NewCartItemAddedEvent creates a new CartItemAddedEvent
func NewCartItemAddedEvent(c *Cart, medicineID string, quantity int) *CartItemAddedEvent {
	return &CartItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartItemAdded, AggregateTypeCart, c.ID, c.SessionID),
		MedicineID:      medicineID,
		Quantity:        quantity,
	}
}

// CartItemRemovedEvent is published when a line is removed
type CartItemRemovedEvent struct {
	shared.BaseDomainEvent
	MedicineID string `json:"medicine_id"`
}

// NewCartItemRemovedEvent creates a new CartItemRemovedEvent
func NewCartItemRemovedEvent(c *Cart, medicineID string) *CartItemRemovedEvent {
	return &CartItemRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartItemRemoved, AggregateTypeCart, c.ID, c.SessionID),
		MedicineID:      medicineID,
	}
}

// CartClearedEvent is published when a cart is emptied
type CartClearedEvent struct {
	shared.BaseDomainEvent
}

// NewCartClearedEvent creates a new CartClearedEvent
func NewCartClearedEvent(c *Cart) *CartClearedEvent {
	return &CartClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartCleared, AggregateTypeCart, c.ID, c.SessionID),
	}
}
