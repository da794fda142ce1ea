package checkout

import (
	"context"

	"github.com/emedico/backend/internal/domain/cart"
	"github.com/emedico/backend/internal/domain/order"
	"github.com/google/uuid"
)

// CartReader reads the session cart being checked out
type CartReader interface {
	Lines(ctx context.Context, sessionID string) ([]cart.Line, error)
}

// PrescriptionLookup returns the session's accepted prescription, or nil
type PrescriptionLookup interface {
	AcceptedID(ctx context.Context, sessionID string) (*uuid.UUID, error)
}

// ReceiptPrinter renders an order receipt as PDF
type ReceiptPrinter interface {
	PrintReceipt(ctx context.Context, o *order.Order) ([]byte, error)
}
