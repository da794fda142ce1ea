package cart

import (
	"context"

	"github.com/emedico/backend/internal/domain/order"
	"github.com/emedico/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderPlacedHandler empties the session cart once its order is placed
type OrderPlacedHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewOrderPlacedHandler creates a new OrderPlacedHandler
func NewOrderPlacedHandler(service *Service, logger *zap.Logger) *OrderPlacedHandler {
	return &OrderPlacedHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderPlacedHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced}
}

// Handle clears the cart of the session the order was placed from
func (h *OrderPlacedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*order.OrderPlacedEvent)
	if !ok {
		h.logger.Warn("Unexpected event type", zap.String("event_type", event.EventType()))
		return nil
	}

	if _, err := h.service.Clear(ctx, placed.SessionID()); err != nil {
		h.logger.Error("Failed to clear cart after order",
			zap.String("session_id", placed.SessionID()),
			zap.String("order_number", placed.OrderNumber),
			zap.Error(err))
		return err
	}

	h.logger.Info("Cart cleared after order",
		zap.String("session_id", placed.SessionID()),
		zap.String("order_number", placed.OrderNumber))
	return nil
}

var _ shared.EventHandler = (*OrderPlacedHandler)(nil)
