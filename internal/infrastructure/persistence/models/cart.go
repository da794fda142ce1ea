package models

import (
	"github.com/emedico/backend/internal/domain/cart"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartModel is the persistence model for the Cart aggregate. A session
// owns at most one cart.
type CartModel struct {
	AggregateModel
	SessionID string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Lines     []CartLineModel `gorm:"foreignKey:CartID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// CartLineModel is one row per medicine in a cart
type CartLineModel struct {
	CartID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MedicineID           string          `gorm:"type:varchar(32);primaryKey"`
	Position             int             `gorm:"not null"`
	Name                 string          `gorm:"type:varchar(200);not null"`
	UnitPrice            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency             string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Quantity             int             `gorm:"not null"`
	PrescriptionRequired bool            `gorm:"not null;default:false"`
	ImageURL             string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CartLineModel) TableName() string {
	return "cart_lines"
}

// CartModelFromDomain converts a domain cart to its model
func CartModelFromDomain(c *cart.Cart) *CartModel {
	m := &CartModel{SessionID: c.SessionID, Lines: make([]CartLineModel, len(c.Lines))}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	for i, line := range c.Lines {
		m.Lines[i] = CartLineModel{
			CartID:               c.ID,
			MedicineID:           line.MedicineID,
			Position:             i,
			Name:                 line.Name,
			UnitPrice:            line.UnitPrice.Amount(),
			Currency:             string(line.UnitPrice.Currency()),
			Quantity:             line.Quantity,
			PrescriptionRequired: line.PrescriptionRequired,
			ImageURL:             line.ImageURL,
		}
	}
	return m
}

// ToDomain converts the model to a domain cart. Lines must be loaded
// ordered by position.
func (m *CartModel) ToDomain() *cart.Cart {
	c := &cart.Cart{
		SessionAggregateRoot: shared.SessionAggregateRoot{
			BaseAggregateRoot: m.ToDomainAggregateRoot(),
			SessionID:         m.SessionID,
		},
		Lines: make([]cart.Line, len(m.Lines)),
	}
	for i, line := range m.Lines {
		c.Lines[i] = cart.Line{
			MedicineID:           line.MedicineID,
			Name:                 line.Name,
			UnitPrice:            toMoney(line.UnitPrice, line.Currency),
			Quantity:             line.Quantity,
			PrescriptionRequired: line.PrescriptionRequired,
			ImageURL:             line.ImageURL,
		}
	}
	return c
}
