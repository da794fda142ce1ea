package persistence

import (
	"context"
	"errors"

	"github.com/emedico/backend/internal/domain/cart"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCartRepository implements cart.CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindBySession loads a session's cart with its lines in insertion order
func (r *GormCartRepository) FindBySession(ctx context.Context, sessionID string) (*cart.Cart, error) {
	var model models.CartModel
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("session_id = ?", sessionID).
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save inserts a new cart or rewrites an existing one. Updates are
// guarded by the version the cart was loaded with; on success the
// in-memory version is advanced to match the stored row.
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	model := models.CartModelFromDomain(c)
	inserted := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := rowExists(ctx, tx, &models.CartModel{}, c.ID)
		if err != nil {
			return err
		}
		if !exists {
			if err := tx.Create(model).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// another request created this session's cart first
					return shared.ErrConcurrencyConflict
				}
				return err
			}
			inserted = true
			return nil
		}

		if err := versionedUpdate(ctx, tx, &models.CartModel{}, c.ID, c.Version, map[string]any{
			"updated_at": c.UpdatedAt,
		}); err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", c.ID).Delete(&models.CartLineModel{}).Error; err != nil {
			return err
		}
		if len(model.Lines) == 0 {
			return nil
		}
		return tx.Create(&model.Lines).Error
	})
	if err != nil {
		return err
	}
	if !inserted {
		c.IncrementVersion()
	}
	return nil
}

// DeleteBySession removes the cart and its lines
func (r *GormCartRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.CartModel
		err := tx.Select("id").Where("session_id = ?", sessionID).First(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", model.ID).Delete(&models.CartLineModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CartModel{}, "id = ?", model.ID).Error
	})
}

var _ cart.CartRepository = (*GormCartRepository)(nil)
