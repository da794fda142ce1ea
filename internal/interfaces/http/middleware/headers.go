// Package middleware holds the gin middleware of the storefront API.
package middleware

import "github.com/emedico/backend/internal/infrastructure/logger"

// Headers read or written by the API.
const (
	HeaderRequestID      = "X-Request-ID"
	HeaderClientID       = "X-Client-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// RequestIDKey is the gin key RequestID stores the ID under.
const RequestIDKey = logger.GinRequestIDKey
