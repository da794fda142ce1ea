package dto

import "net/http"

// API error codes. Domain errors carry short codes such as "EMPTY_CART";
// responses always carry the ERR_ form.
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeRequestTooLarge     = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited         = "ERR_RATE_LIMITED"
	ErrCodeServiceUnavailable  = "ERR_SERVICE_UNAVAILABLE"
)

// Shopping
const (
	ErrCodeItemUnavailable      = "ERR_ITEM_UNAVAILABLE"
	ErrCodeInvalidQuantity      = "ERR_INVALID_QUANTITY"
	ErrCodeEmptyCart            = "ERR_EMPTY_CART"
	ErrCodeInvalidAddress       = "ERR_INVALID_ADDRESS"
	ErrCodeInvalidPaymentMethod = "ERR_INVALID_PAYMENT_METHOD"
	ErrCodeInvalidFulfillment   = "ERR_INVALID_FULFILLMENT_OPTION"
	ErrCodePrescriptionRequired = "ERR_PRESCRIPTION_REQUIRED"
	ErrCodeInvalidFileType      = "ERR_INVALID_FILE_TYPE"
	ErrCodeFileTooLarge         = "ERR_FILE_TOO_LARGE"
	ErrCodeRequestInProgress    = "ERR_REQUEST_IN_PROGRESS"
)

// Accounts
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountLocked      = "ERR_ACCOUNT_LOCKED"
	ErrCodeAccountDeactivated = "ERR_ACCOUNT_DEACTIVATED"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
)

var statusByCode = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeServiceUnavailable:  http.StatusServiceUnavailable,

	ErrCodeItemUnavailable:      http.StatusUnprocessableEntity,
	ErrCodeInvalidQuantity:      http.StatusBadRequest,
	ErrCodeEmptyCart:            http.StatusUnprocessableEntity,
	ErrCodeInvalidAddress:       http.StatusBadRequest,
	ErrCodeInvalidPaymentMethod: http.StatusBadRequest,
	ErrCodeInvalidFulfillment:   http.StatusBadRequest,
	ErrCodePrescriptionRequired: http.StatusUnprocessableEntity,
	ErrCodeInvalidFileType:      http.StatusUnsupportedMediaType,
	ErrCodeFileTooLarge:         http.StatusRequestEntityTooLarge,
	ErrCodeRequestInProgress:    http.StatusConflict,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountLocked:      http.StatusLocked,
	ErrCodeAccountDeactivated: http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
}

// domainCodes translates domain error codes whose API code is not simply
// the ERR_ prefixed form
var domainCodes = map[string]string{
	"VALIDATION_ERROR":    ErrCodeValidation,
	"INTERNAL_ERROR":      ErrCodeInternal,
	"PASSWORD_HASH_ERROR": ErrCodeInternal,
	"PRINTING_DISABLED":   ErrCodeServiceUnavailable,
	"EMPTY_FILE":          ErrCodeValidation,
	"INVALID_SESSION":     ErrCodeValidation,
	"INVALID_STATUS":      ErrCodeValidation,
	"INVALID_NAME":        ErrCodeValidation,
	"INVALID_EMAIL":       ErrCodeValidation,
	"INVALID_PASSWORD":    ErrCodeValidation,
}

// GetHTTPStatus returns the status an API error code is sent with. Unknown
// codes are server errors.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode turns a domain code into its API code. Codes that
// already are API codes, and codes nobody registered, pass through.
func NormalizeErrorCode(code string) string {
	if api, ok := domainCodes[code]; ok {
		return api
	}
	if _, ok := statusByCode["ERR_"+code]; ok {
		return "ERR_" + code
	}
	return code
}
