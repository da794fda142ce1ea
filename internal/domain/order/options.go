package order

// PaymentMethod is how the customer intends to pay. No payment is taken
// by this service.
type PaymentMethod string

// Payment methods
const (
	PaymentCreditCard     PaymentMethod = "creditCard"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cod"
)

// IsValid reports whether m is a supported payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentCashOnDelivery:
		return true
	}
	return false
}

// FulfillmentOption is how the order reaches the customer
type FulfillmentOption string

// Fulfillment options
const (
	FulfillmentDelivery FulfillmentOption = "delivery"
	FulfillmentPickup   FulfillmentOption = "pickup"
)

// IsValid reports whether f is a supported fulfillment option
func (f FulfillmentOption) IsValid() bool {
	return f == FulfillmentDelivery || f == FulfillmentPickup
}
