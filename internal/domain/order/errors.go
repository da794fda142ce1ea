package order

import (
	"errors"

	"github.com/emedico/backend/internal/domain/shared"
)

// Checkout rejection codes
const (
	CodeEmptyCart            = "EMPTY_CART"
	CodeInvalidAddress       = "INVALID_ADDRESS"
	CodeInvalidPayment       = "INVALID_PAYMENT_METHOD"
	CodeInvalidFulfillment   = "INVALID_FULFILLMENT_OPTION"
	CodePrescriptionRequired = "PRESCRIPTION_REQUIRED"
	CodeItemUnavailable      = "ITEM_UNAVAILABLE"
)

// OrderError is the rejection half of a checkout result
type OrderError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *OrderError) Error() string {
	return e.Message
}

// NewOrderError creates an OrderError
func NewOrderError(code, message string) *OrderError {
	return &OrderError{Code: code, Message: message}
}

// AsOrderError converts a domain error into an OrderError, keeping its
// code and details. Other errors yield nil.
func AsOrderError(err error) *OrderError {
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return &OrderError{Code: de.Code, Message: de.Message, Details: de.Details}
	}
	return nil
}
