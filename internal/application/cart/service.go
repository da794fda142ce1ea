package cart

import (
	"context"
	"errors"

	"github.com/emedico/backend/internal/application/locks"
	"github.com/emedico/backend/internal/domain/cart"
	"github.com/emedico/backend/internal/domain/catalog"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// View is what every cart observer sees: the lines and their totals
type View struct {
	SessionID            string      `json:"session_id"`
	Lines                []cart.Line `json:"items"`
	Totals               cart.Totals `json:"totals"`
	RequiresPrescription bool        `json:"requires_prescription"`
	Version              int         `json:"version"`
}

// Service owns the shared cart of each session. All mutations of one
// session's cart are serialized; each returns the recomputed view.
type Service struct {
	carts          cart.CartRepository
	medicines      catalog.MedicineRepository
	eventPublisher shared.EventPublisher
	metrics        *telemetry.StorefrontMetrics
	locks          *locks.KeyedMutex
	logger         *zap.Logger
}

// NewService creates a new cart service
func NewService(carts cart.CartRepository, medicines catalog.MedicineRepository, logger *zap.Logger) *Service {
	return &Service{
		carts:     carts,
		medicines: medicines,
		locks:     locks.NewKeyedMutex(),
		logger:    logger,
	}
}

// SetEventPublisher sets the publisher for cart events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the storefront metrics recorder
func (s *Service) SetMetrics(m *telemetry.StorefrontMetrics) {
	s.metrics = m
}

// Get returns the session's cart, empty when nothing was added yet
func (s *Service) Get(ctx context.Context, sessionID string) (*View, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toView(c), nil
}

// Lines returns a snapshot of the session's cart for checkout
func (s *Service) Lines(ctx context.Context, sessionID string) ([]cart.Line, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c.Snapshot(), nil
}

// AddItem adds quantity units of a catalog item
func (s *Service) AddItem(ctx context.Context, sessionID, medicineID string, quantity int) (*View, error) {
	item, err := s.medicines.FindByID(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, "add", func(c *cart.Cart) error {
		_, err := c.Add(*item, quantity)
		return err
	})
}

// UpdateQuantity replaces a line's quantity
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, medicineID string, quantity int) (*View, error) {
	return s.mutate(ctx, sessionID, "update", func(c *cart.Cart) error {
		_, err := c.SetQuantity(medicineID, quantity)
		return err
	})
}

// RemoveItem deletes a line
func (s *Service) RemoveItem(ctx context.Context, sessionID, medicineID string) (*View, error) {
	return s.mutate(ctx, sessionID, "remove", func(c *cart.Cart) error {
		_, err := c.Remove(medicineID)
		return err
	})
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, sessionID string) (*View, error) {
	return s.mutate(ctx, sessionID, "clear", func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// Discard deletes the session's cart outright
func (s *Service) Discard(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.carts.DeleteBySession(ctx, sessionID)
}

func (s *Service) mutate(ctx context.Context, sessionID, action string, fn func(*cart.Cart) error) (*View, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", action,
		telemetry.WithAttribute(telemetry.SpanAttrSessionID, sessionID))
	defer span.End()

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, c)
	s.metrics.RecordCartMutation(ctx, action)
	return toView(c), nil
}

func (s *Service) load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	c, err := s.carts.FindBySession(ctx, sessionID)
	if err == nil {
		return c, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return cart.NewCart(sessionID)
	}
	return nil, err
}

func (s *Service) publish(ctx context.Context, c *cart.Cart) {
	events := c.GetDomainEvents()
	c.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish cart events",
			zap.String("session_id", c.SessionID),
			zap.Error(err))
	}
}

func toView(c *cart.Cart) *View {
	return &View{
		SessionID:            c.SessionID,
		Lines:                c.Snapshot(),
		Totals:               c.Totals(),
		RequiresPrescription: c.RequiresPrescription(),
		Version:              c.Version,
	}
}
