package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL is how long a checkout key or handled event stays
// remembered
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers request keys and what they resolved to. Checkout
// stores the order ID under the client's Idempotency-Key; event handlers store
// the IDs of events they already processed.
type IdempotencyStore interface {
	// Claim takes key for value. When key is already taken it returns the
	// earlier value with claimed=false.
	Claim(ctx context.Context, key, value string, ttl time.Duration) (existing string, claimed bool, err error)

	// Release forgets key so a failed request may be retried
	Release(ctx context.Context, key string) error

	Close() error
}
