package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something a shopper's action caused, such as an item
// entering the cart or an order being placed. Every event carries the
// storefront session it happened in.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	SessionID() string
}

// BaseDomainEvent is embedded by concrete events to satisfy DomainEvent
type BaseDomainEvent struct {
	ID      uuid.UUID `json:"event_id"`
	Name    string    `json:"event_type"`
	At      time.Time `json:"occurred_at"`
	Subject uuid.UUID `json:"aggregate_id"`
	Kind    string    `json:"aggregate_type"`
	Session string    `json:"session_id"`
}

func NewBaseDomainEvent(eventType, aggregateType string, aggregateID uuid.UUID, sessionID string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:      uuid.New(),
		Name:    eventType,
		At:      time.Now().UTC(),
		Subject: aggregateID,
		Kind:    aggregateType,
		Session: sessionID,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Name }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Subject }
func (e *BaseDomainEvent) AggregateType() string  { return e.Kind }
func (e *BaseDomainEvent) SessionID() string      { return e.Session }
