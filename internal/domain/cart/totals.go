package cart

import (
	"github.com/emedico/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Pricing rules applied to every cart
var (
	// TaxRate is the estimated sales tax applied to the subtotal
	TaxRate = decimal.RequireFromString("0.05")
	// FreeShippingThreshold is the subtotal shipping becomes free above
	FreeShippingThreshold = valueobject.MustUSD("50")
	// StandardShippingFee is charged when the subtotal does not exceed the threshold
	StandardShippingFee = valueobject.MustUSD("5.99")
)

// Totals is the derived price summary of a set of cart lines.
// Amounts are exact; round with Money.Display for presentation.
type Totals struct {
	ItemCount int               `json:"item_count"`
	Subtotal  valueobject.Money `json:"subtotal"`
	Tax       valueobject.Money `json:"estimated_tax"`
	Shipping  valueobject.Money `json:"shipping_fee"`
	Total     valueobject.Money `json:"total"`
}

// ComputeTotals derives the totals for lines:
//
//	subtotal = Σ price × quantity
//	tax      = subtotal × 0.05
//	shipping = 0 if subtotal > 50 else 5.99
//	total    = subtotal + tax + shipping
func ComputeTotals(lines []Line) Totals {
	subtotal := valueobject.ZeroUSD()
	count := 0
	for _, line := range lines {
		subtotal = subtotal.MustAdd(line.LineTotal())
		count += line.Quantity
	}
	return totalsFor(subtotal, count, ShippingFeeFor(subtotal))
}

// ShippingFeeFor returns the shipping fee for a subtotal
func ShippingFeeFor(subtotal valueobject.Money) valueobject.Money {
	if subtotal.Amount().GreaterThan(FreeShippingThreshold.Amount()) {
		return valueobject.ZeroUSD()
	}
	return StandardShippingFee
}

// WithoutShipping returns the totals recomputed with no shipping fee, as
// for in-store pickup.
func (t Totals) WithoutShipping() Totals {
	return totalsFor(t.Subtotal, t.ItemCount, valueobject.ZeroUSD())
}

func totalsFor(subtotal valueobject.Money, count int, shipping valueobject.Money) Totals {
	tax := subtotal.Multiply(TaxRate)
	return Totals{
		ItemCount: count,
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  shipping,
		Total:     subtotal.MustAdd(tax).MustAdd(shipping),
	}
}
