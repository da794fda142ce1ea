package checkout

import (
	"time"

	"github.com/emedico/backend/internal/domain/cart"
	"github.com/emedico/backend/internal/domain/order"
	"github.com/google/uuid"
)

// SubmitOrderInput is a checkout submission
type SubmitOrderInput struct {
	SessionID      string
	UserID         *uuid.UUID
	Address        order.Address
	PaymentMethod  order.PaymentMethod
	Fulfillment    order.FulfillmentOption
	IdempotencyKey string
}

// SubmitOrderResult is a successful checkout. Replayed is set when the
// confirmation was produced by an earlier request with the same key.
type SubmitOrderResult struct {
	Confirmation order.Confirmation
	Replayed     bool
}

// OrderView is the public view of a placed order
type OrderView struct {
	ID            uuid.UUID               `json:"id"`
	OrderNumber   string                  `json:"order_number"`
	SessionID     string                  `json:"session_id"`
	Status        order.Status            `json:"status"`
	Items         []order.Item            `json:"items"`
	Address       order.Address           `json:"address"`
	PaymentMethod order.PaymentMethod     `json:"payment_method"`
	Fulfillment   order.FulfillmentOption `json:"fulfillment"`
	Totals        cart.Totals             `json:"totals"`
	PlacedAt      time.Time               `json:"placed_at"`
	CancelledAt   *time.Time              `json:"cancelled_at,omitempty"`
	CancelReason  string                  `json:"cancel_reason,omitempty"`
}

// StatusChangeInput requests an order status transition
type StatusChangeInput struct {
	Status order.Status
	Reason string
}

func toOrderView(o *order.Order) *OrderView {
	return &OrderView{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		SessionID:     o.SessionID,
		Status:        o.Status,
		Items:         o.Items,
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		Fulfillment:   o.Fulfillment,
		Totals:        o.Totals(),
		PlacedAt:      o.PlacedAt,
		CancelledAt:   o.CancelledAt,
		CancelReason:  o.CancelReason,
	}
}
