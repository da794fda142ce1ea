package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/emedico/backend/internal/domain/cart"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Item is one line of a placed order, frozen at checkout
type Item struct {
	MedicineID string            `json:"medicine_id"`
	Name       string            `json:"name"`
	UnitPrice  valueobject.Money `json:"unit_price"`
	Quantity   int               `json:"quantity"`
	LineTotal  valueobject.Money `json:"line_total"`
}

// Order is a placed storefront order
type Order struct {
	shared.SessionAggregateRoot
	OrderNumber    string
	UserID         *uuid.UUID
	Status         Status
	Items          []Item
	Address        Address
	PaymentMethod  PaymentMethod
	Fulfillment    FulfillmentOption
	PrescriptionID *uuid.UUID
	Subtotal       valueobject.Money
	Tax            valueobject.Money
	Shipping       valueobject.Money
	Total          valueobject.Money
	PlacedAt       time.Time
	CancelledAt    *time.Time
	CancelReason   string
}

// PlaceRequest carries everything needed to place an order
type PlaceRequest struct {
	ID             uuid.UUID
	SessionID      string
	UserID         *uuid.UUID
	Lines          []cart.Line
	Address        Address
	PaymentMethod  PaymentMethod
	Fulfillment    FulfillmentOption
	PrescriptionID *uuid.UUID
}

// Place validates req and creates a new order in the placed state.
// Rejections are returned as *OrderError.
func Place(req PlaceRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, NewOrderError(CodeEmptyCart, "Your cart is empty")
	}
	if !req.PaymentMethod.IsValid() {
		return nil, NewOrderError(CodeInvalidPayment, fmt.Sprintf("Unsupported payment method %q", req.PaymentMethod))
	}
	if req.Fulfillment == "" {
		req.Fulfillment = FulfillmentDelivery
	}
	if !req.Fulfillment.IsValid() {
		return nil, NewOrderError(CodeInvalidFulfillment, fmt.Sprintf("Unsupported fulfillment option %q", req.Fulfillment))
	}

	addr := req.Address.Normalize()
	if req.Fulfillment == FulfillmentDelivery {
		if err := addr.Validate(); err != nil {
			return nil, AsOrderError(err)
		}
	}

	for _, line := range req.Lines {
		if line.PrescriptionRequired && req.PrescriptionID == nil {
			return nil, &OrderError{
				Code:    CodePrescriptionRequired,
				Message: line.Name + " requires a prescription. Upload one before checking out.",
				Details: map[string]string{"medicine_id": line.MedicineID},
			}
		}
	}

	totals := cart.ComputeTotals(req.Lines)
	if req.Fulfillment == FulfillmentPickup {
		totals = totals.WithoutShipping()
	}

	root := shared.NewSessionAggregateRoot(req.SessionID)
	if req.ID != uuid.Nil {
		root.ID = req.ID
	}

	o := &Order{
		SessionAggregateRoot: root,
		UserID:               req.UserID,
		Status:               StatusPlaced,
		Items:                make([]Item, len(req.Lines)),
		Address:              addr,
		PaymentMethod:        req.PaymentMethod,
		Fulfillment:          req.Fulfillment,
		PrescriptionID:       req.PrescriptionID,
		Subtotal:             totals.Subtotal,
		Tax:                  totals.Tax,
		Shipping:             totals.Shipping,
		Total:                totals.Total,
		PlacedAt:             root.CreatedAt,
	}
	o.OrderNumber = NumberFor(o.ID, o.PlacedAt)

	for i, line := range req.Lines {
		o.Items[i] = Item{
			MedicineID: line.MedicineID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			LineTotal:  line.LineTotal(),
		}
	}

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// NumberFor derives the customer-facing order number, e.g. EM-20261019-1A2B3C4D
func NumberFor(id uuid.UUID, placedAt time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("EM-%s-%s", placedAt.UTC().Format("20060102"), suffix)
}

// Totals returns the order's price summary
func (o *Order) Totals() cart.Totals {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return cart.Totals{
		ItemCount: count,
		Subtotal:  o.Subtotal,
		Tax:       o.Tax,
		Shipping:  o.Shipping,
		Total:     o.Total,
	}
}

// Confirm moves a placed order to confirmed
func (o *Order) Confirm() error {
	return o.transition(StatusConfirmed)
}

// Ship moves a confirmed order to shipped. Pickup orders are never shipped.
func (o *Order) Ship() error {
	if o.Fulfillment == FulfillmentPickup {
		return shared.NewDomainError("INVALID_STATE", "Pickup orders cannot be shipped")
	}
	return o.transition(StatusShipped)
}

// Deliver marks the order as handed over. Delivery orders must ship
// first; pickup orders are collected straight from confirmed.
func (o *Order) Deliver() error {
	if o.Fulfillment == FulfillmentDelivery && o.Status == StatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Delivery orders must ship before they are delivered")
	}
	return o.transition(StatusDelivered)
}

// Cancel cancels an order that has not shipped yet
func (o *Order) Cancel(reason string) error {
	if err := o.transition(StatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelledAt = &now
	o.CancelReason = strings.TrimSpace(reason)
	o.Record(NewOrderCancelledEvent(o))
	return nil
}

func (o *Order) transition(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change order from %s to %s", o.Status, target))
	}
	from := o.Status
	o.Status = target
	o.Record(NewOrderStatusChangedEvent(o, from))
	return nil
}

// Confirmation is the success half of a checkout result
type Confirmation struct {
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Status      Status      `json:"status"`
	Totals      cart.Totals `json:"totals"`
	PlacedAt    time.Time   `json:"placed_at"`
}

// Confirmation returns the checkout confirmation for the order
func (o *Order) Confirmation() Confirmation {
	return Confirmation{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Totals:      o.Totals(),
		PlacedAt:    o.PlacedAt,
	}
}
