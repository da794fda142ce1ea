package models

import (
	"time"

	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BaseModel provides the id and timestamp columns
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the optimistic lock version
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot copies id, timestamps and version
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// ToDomainAggregateRoot rebuilds the domain root
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
}

// SessionAggregateModel is an aggregate owned by a storefront session
type SessionAggregateModel struct {
	AggregateModel
	SessionID string `gorm:"type:varchar(64);not null;index"`
}

// FromDomainSessionAggregateRoot copies the session root
func (m *SessionAggregateModel) FromDomainSessionAggregateRoot(s shared.SessionAggregateRoot) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.SessionID = s.SessionID
}

// ToDomainSessionAggregateRoot rebuilds the session root
func (m *SessionAggregateModel) ToDomainSessionAggregateRoot() shared.SessionAggregateRoot {
	return shared.SessionAggregateRoot{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SessionID:         m.SessionID,
	}
}

func toMoney(amount decimal.Decimal, currency string) valueobject.Money {
	m, err := valueobject.NewMoney(amount, valueobject.Currency(currency))
	if err != nil {
		return valueobject.NewMoneyUSD(amount)
	}
	return m
}
