package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BaseAggregateRoot is embedded by every aggregate. Version backs optimistic
// locking: repositories compare it on save and bump it on success.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	pending []DomainEvent
}

// NewBaseAggregateRoot returns a root with a fresh ID at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	now := time.Now()
	return BaseAggregateRoot{
		BaseEntity: BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Version:    1,
	}
}

// IncrementVersion records a successful save
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues event until the aggregate is saved
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the queued events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

// ClearDomainEvents drops the queued events once they are published
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// touch stamps UpdatedAt
func (a *BaseAggregateRoot) touch() {
	a.UpdatedAt = time.Now()
}

// SessionAggregateRoot is an aggregate owned by one storefront session.
// Carts, prescription uploads and orders all hang off a session ID.
type SessionAggregateRoot struct {
	BaseAggregateRoot
	SessionID string
}

// NewSessionAggregateRoot creates a new session-scoped aggregate root
func NewSessionAggregateRoot(sessionID string) SessionAggregateRoot {
	return SessionAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		SessionID:         sessionID,
	}
}

// Record queues event and stamps the aggregate as changed
func (s *SessionAggregateRoot) Record(event DomainEvent) {
	s.touch()
	s.AddDomainEvent(event)
}
