package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emedico/backend/internal/domain/order"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Errors returned by the checkout service
var (
	ErrRequestInProgress = shared.NewDomainError("REQUEST_IN_PROGRESS", "A checkout with this idempotency key is still being processed")
	ErrPrintingDisabled  = shared.NewDomainError("PRINTING_DISABLED", "Receipt printing is not enabled")
)

// Config holds checkout settings
type Config struct {
	IdempotencyTTL time.Duration
}

// Service turns a session cart into an order
type Service struct {
	orders         order.OrderRepository
	carts          CartReader
	prescriptions  PrescriptionLookup
	idempotency    shared.IdempotencyStore
	printer        ReceiptPrinter
	eventPublisher shared.EventPublisher
	metrics        *telemetry.StorefrontMetrics
	config         Config
	logger         *zap.Logger
}

// NewService creates a new checkout service. idempotency may be nil, in
// which case Idempotency-Key headers are ignored.
func NewService(
	orders order.OrderRepository,
	carts CartReader,
	prescriptions PrescriptionLookup,
	idempotency shared.IdempotencyStore,
	config Config,
	logger *zap.Logger,
) *Service {
	if config.IdempotencyTTL <= 0 {
		config.IdempotencyTTL = shared.DefaultIdempotencyTTL
	}
	return &Service{
		orders:        orders,
		carts:         carts,
		prescriptions: prescriptions,
		idempotency:   idempotency,
		config:        config,
		logger:        logger,
	}
}

// SetEventPublisher sets the publisher for order events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetReceiptPrinter enables PDF receipts
func (s *Service) SetReceiptPrinter(printer ReceiptPrinter) {
	s.printer = printer
}

// SetMetrics sets the storefront metrics recorder
func (s *Service) SetMetrics(m *telemetry.StorefrontMetrics) {
	s.metrics = m
}

// SubmitOrder places an order for the session's cart. Rejections are
// returned as *order.OrderError. With an idempotency key, repeating a
// submission returns the first confirmation instead of a second order.
func (s *Service) SubmitOrder(ctx context.Context, input SubmitOrderInput) (*SubmitOrderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "submit",
		telemetry.WithAttribute(telemetry.SpanAttrSessionID, input.SessionID))
	defer span.End()

	orderID := uuid.New()
	key := ""
	if input.IdempotencyKey != "" && s.idempotency != nil {
		key = idempotencyKey(input.SessionID, input.IdempotencyKey)
		existing, claimed, err := s.idempotency.Claim(ctx, key, orderID.String(), s.config.IdempotencyTTL)
		switch {
		case err != nil:
			s.logger.Warn("Idempotency check failed, processing checkout anyway",
				zap.String("session_id", input.SessionID), zap.Error(err))
			key = ""
		case !claimed:
			return s.replay(ctx, existing)
		}
	}

	o, err := s.place(ctx, orderID, input)
	if err != nil {
		if key != "" {
			if releaseErr := s.idempotency.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
				s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(releaseErr))
			}
		}
		if oe := order.AsOrderError(err); oe != nil {
			s.metrics.RecordCheckoutFailure(ctx, oe.Code)
			return nil, oe
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, o.ID.String(),
		telemetry.SpanAttrOrderNumber, o.OrderNumber)
	return &SubmitOrderResult{Confirmation: o.Confirmation()}, nil
}

func (s *Service) place(ctx context.Context, orderID uuid.UUID, input SubmitOrderInput) (*order.Order, error) {
	lines, err := s.carts.Lines(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	var prescriptionID *uuid.UUID
	for _, line := range lines {
		if line.PrescriptionRequired {
			if prescriptionID, err = s.prescriptions.AcceptedID(ctx, input.SessionID); err != nil {
				return nil, err
			}
			break
		}
	}

	o, err := order.Place(order.PlaceRequest{
		ID:             orderID,
		SessionID:      input.SessionID,
		UserID:         input.UserID,
		Lines:          lines,
		Address:        input.Address,
		PaymentMethod:  input.PaymentMethod,
		Fulfillment:    input.Fulfillment,
		PrescriptionID: prescriptionID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.logger.Info("Order placed",
		zap.String("session_id", o.SessionID),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.Total.Display()),
		zap.String("payment_method", string(o.PaymentMethod)),
		zap.String("fulfillment", string(o.Fulfillment)))
	s.metrics.RecordOrderPlaced(ctx, o.Total.Amount(), string(o.PaymentMethod), string(o.Fulfillment))

	s.publish(ctx, o)
	return o, nil
}

func (s *Service) replay(ctx context.Context, existing string) (*SubmitOrderResult, error) {
	id, err := uuid.Parse(existing)
	if err != nil {
		return nil, fmt.Errorf("corrupt idempotency record %q: %w", existing, err)
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrRequestInProgress
		}
		return nil, err
	}
	s.logger.Debug("Checkout replayed", zap.String("order_number", o.OrderNumber))
	return &SubmitOrderResult{Confirmation: o.Confirmation(), Replayed: true}, nil
}

// GetOrder returns one order
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderView(o), nil
}

// ListSessionOrders lists the orders placed from a session, newest first
func (s *Service) ListSessionOrders(ctx context.Context, sessionID string, filter shared.Filter) (*shared.Paginated[OrderView], error) {
	orders, total, err := s.orders.FindBySession(ctx, sessionID, filter)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, len(orders))
	for i := range orders {
		views[i] = *toOrderView(&orders[i])
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ChangeStatus moves an order along its lifecycle
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, input StatusChangeInput) (*OrderView, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch input.Status {
	case order.StatusConfirmed:
		err = o.Confirm()
	case order.StatusShipped:
		err = o.Ship()
	case order.StatusDelivered:
		err = o.Deliver()
	case order.StatusCancelled:
		err = o.Cancel(input.Reason)
	default:
		err = shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", input.Status))
	}
	if err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)
	s.logger.Info("Order status changed",
		zap.String("order_number", o.OrderNumber),
		zap.String("status", string(o.Status)))
	return toOrderView(o), nil
}

// Receipt renders an order's receipt as PDF
func (s *Service) Receipt(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.printer == nil {
		return nil, "", ErrPrintingDisabled
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.printer.PrintReceipt(ctx, o)
	if err != nil {
		return nil, "", err
	}
	return pdf, o.OrderNumber, nil
}

func (s *Service) publish(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish order events",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
	}
}

func idempotencyKey(sessionID, key string) string {
	return "checkout:" + sessionID + ":" + key
}
