package models

import (
	"time"

	"github.com/emedico/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	SessionAggregateModel
	OrderNumber    string                  `gorm:"type:varchar(32);not null;uniqueIndex"`
	UserID         *uuid.UUID              `gorm:"type:uuid;index"`
	Status         order.Status            `gorm:"type:varchar(20);not null;default:'placed'"`
	FullName       string                  `gorm:"type:varchar(200)"`
	AddressLine1   string                  `gorm:"type:varchar(300)"`
	City           string                  `gorm:"type:varchar(100)"`
	ZipCode        string                  `gorm:"type:varchar(10)"`
	PhoneNumber    string                  `gorm:"type:varchar(30)"`
	PaymentMethod  order.PaymentMethod     `gorm:"type:varchar(20);not null"`
	Fulfillment    order.FulfillmentOption `gorm:"type:varchar(20);not null"`
	PrescriptionID *uuid.UUID              `gorm:"type:uuid"`
	Currency       string                  `gorm:"type:varchar(3);not null;default:'USD'"`
	Subtotal       decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Tax            decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Shipping       decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Total          decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	PlacedAt       time.Time               `gorm:"not null;index"`
	CancelledAt    *time.Time
	CancelReason   string           `gorm:"type:varchar(500)"`
	Items          []OrderItemModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is a frozen order line
type OrderItemModel struct {
	OrderID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position   int             `gorm:"primaryKey"`
	MedicineID string          `gorm:"type:varchar(32);not null"`
	Name       string          `gorm:"type:varchar(200);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity   int             `gorm:"not null"`
	LineTotal  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderModelFromDomain converts a domain order to its model
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Status:         o.Status,
		FullName:       o.Address.FullName,
		AddressLine1:   o.Address.AddressLine1,
		City:           o.Address.City,
		ZipCode:        o.Address.ZipCode,
		PhoneNumber:    o.Address.PhoneNumber,
		PaymentMethod:  o.PaymentMethod,
		Fulfillment:    o.Fulfillment,
		PrescriptionID: o.PrescriptionID,
		Currency:       string(o.Total.Currency()),
		Subtotal:       o.Subtotal.Amount(),
		Tax:            o.Tax.Amount(),
		Shipping:       o.Shipping.Amount(),
		Total:          o.Total.Amount(),
		PlacedAt:       o.PlacedAt,
		CancelledAt:    o.CancelledAt,
		CancelReason:   o.CancelReason,
		Items:          make([]OrderItemModel, len(o.Items)),
	}
	m.FromDomainSessionAggregateRoot(o.SessionAggregateRoot)
	for i, item := range o.Items {
		m.Items[i] = OrderItemModel{
			OrderID:    o.ID,
			Position:   i,
			MedicineID: item.MedicineID,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice.Amount(),
			Quantity:   item.Quantity,
			LineTotal:  item.LineTotal.Amount(),
		}
	}
	return m
}

// ToDomain converts the model to a domain order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		SessionAggregateRoot: m.ToDomainSessionAggregateRoot(),
		OrderNumber:          m.OrderNumber,
		UserID:               m.UserID,
		Status:               m.Status,
		Items:                make([]order.Item, len(m.Items)),
		Address: order.Address{
			FullName:     m.FullName,
			AddressLine1: m.AddressLine1,
			City:         m.City,
			ZipCode:      m.ZipCode,
			PhoneNumber:  m.PhoneNumber,
		},
		PaymentMethod:  m.PaymentMethod,
		Fulfillment:    m.Fulfillment,
		PrescriptionID: m.PrescriptionID,
		Subtotal:       toMoney(m.Subtotal, m.Currency),
		Tax:            toMoney(m.Tax, m.Currency),
		Shipping:       toMoney(m.Shipping, m.Currency),
		Total:          toMoney(m.Total, m.Currency),
		PlacedAt:       m.PlacedAt,
		CancelledAt:    m.CancelledAt,
		CancelReason:   m.CancelReason,
	}
	for i, item := range m.Items {
		o.Items[i] = order.Item{
			MedicineID: item.MedicineID,
			Name:       item.Name,
			UnitPrice:  toMoney(item.UnitPrice, m.Currency),
			Quantity:   item.Quantity,
			LineTotal:  toMoney(item.LineTotal, m.Currency),
		}
	}
	return o
}
