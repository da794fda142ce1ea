package persistence

import (
	"context"
	"errors"

	"github.com/emedico/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// versionedUpdate runs an UPDATE guarded by the aggregate's current version
// and bumps the stored version. A miss means another writer got there first.
func versionedUpdate(ctx context.Context, tx *gorm.DB, model any, id any, version int, updates map[string]any) error {
	updates["version"] = gorm.Expr("version + 1")
	result := tx.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// rowExists reports whether a row with id exists in model's table
func rowExists(ctx context.Context, tx *gorm.DB, model any, id any) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
