package printing

import (
	"context"
	"testing"

	"github.com/emedico/backend/internal/domain/cart"
	"github.com/emedico/backend/internal/domain/order"
	"github.com/emedico/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	last Document
	err  error
}

func (f *fakeRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	f.last = doc
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7"), nil
}

func (f *fakeRenderer) Close() error { return nil }

func placedOrder(t *testing.T, fulfillment order.FulfillmentOption) *order.Order {
	t.Helper()
	o, err := order.Place(order.PlaceRequest{
		SessionID: "session-1",
		Lines: []cart.Line{
			{MedicineID: "med001", Name: "Paracetamol 500mg", UnitPrice: valueobject.MustUSD("5.99"), Quantity: 2},
			{MedicineID: "med003", Name: "Vitamin C <1000mg>", UnitPrice: valueobject.MustUSD("8.75"), Quantity: 1},
		},
		Address: order.Address{
			FullName:     "Jane Doe",
			AddressLine1: "1 Main St",
			City:         "Springfield",
			ZipCode:      "12345",
			PhoneNumber:  "5551234567",
		},
		PaymentMethod: order.PaymentCashOnDelivery,
		Fulfillment:   fulfillment,
	})
	require.NoError(t, err)
	return o
}

func TestRenderReceiptHTML_Delivery(t *testing.T) {
	o := placedOrder(t, order.FulfillmentDelivery)

	html, err := RenderReceiptHTML("E-Medico", o)
	require.NoError(t, err)

	assert.Contains(t, html, o.OrderNumber)
	assert.Contains(t, html, "Jane Doe")
	assert.Contains(t, html, "Cash on delivery")
	assert.Contains(t, html, "Placed")
	assert.Contains(t, html, "$11.98")
	assert.Contains(t, html, "$20.73")
	assert.Contains(t, html, "$1.04")
	assert.Contains(t, html, "$5.99")
	assert.Contains(t, html, "$27.76")
	assert.Contains(t, html, "Vitamin C &lt;1000mg&gt;")
}

func TestRenderReceiptHTML_Pickup(t *testing.T) {
	o := placedOrder(t, order.FulfillmentPickup)

	html, err := RenderReceiptHTML("E-Medico", o)
	require.NoError(t, err)

	assert.Contains(t, html, "In-store pickup")
	assert.Contains(t, html, "FREE")
	assert.NotContains(t, html, "Deliver to")
}

func TestReceiptPrinter(t *testing.T) {
	renderer := &fakeRenderer{}
	printer := NewReceiptPrinter(renderer, "")
	o := placedOrder(t, order.FulfillmentDelivery)

	pdf, err := printer.PrintReceipt(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), pdf)
	assert.Equal(t, A4, renderer.last.Paper)
	assert.Contains(t, renderer.last.Footer, "pageNumber")
	assert.Equal(t, "Receipt "+o.OrderNumber, renderer.last.Title)
	assert.Contains(t, renderer.last.HTML, "<h1>E-Medico</h1>")

	renderer.err = ErrTimeout
	_, err = printer.PrintReceipt(context.Background(), o)
	assert.ErrorIs(t, err, ErrTimeout)
}
