package persistence

import (
	"context"
	"errors"

	"github.com/emedico/backend/internal/domain/order"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save inserts a placed order with its items, or updates the status
// columns of an existing order. Items are immutable once placed.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	inserted := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := rowExists(ctx, tx, &models.OrderModel{}, o.ID)
		if err != nil {
			return err
		}
		if !exists {
			if err := tx.Create(model).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return shared.ErrAlreadyExists
				}
				return err
			}
			inserted = true
			return nil
		}
		return versionedUpdate(ctx, tx, &models.OrderModel{}, o.ID, o.Version, map[string]any{
			"status":        model.Status,
			"cancelled_at":  model.CancelledAt,
			"cancel_reason": model.CancelReason,
			"updated_at":    model.UpdatedAt,
		})
	})
	if err != nil {
		return err
	}
	if !inserted {
		o.IncrementVersion()
	}
	return nil
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySession returns one page of a session's orders and the total count
func (r *GormOrderRepository) FindBySession(ctx context.Context, sessionID string, filter shared.Filter) ([]order.Order, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("session_id = ?", sessionID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = shared.DefaultFilter().PageSize
	}

	var rows []models.OrderModel
	if err := r.withItems(ctx).
		Where("session_id = ?", sessionID).
		Order(orderHistorySort.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
