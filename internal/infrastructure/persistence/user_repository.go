package persistence

import (
	"context"
	"errors"

	"github.com/emedico/backend/internal/domain/identity"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository keeps customer accounts in the users table
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new account. The unique email index turns a second
// registration into shared.ErrAlreadyExists.
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	err := r.db.WithContext(ctx).Create(models.UserModelFromDomain(user)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// Update writes login bookkeeping, password and status changes. A stale
// version yields shared.ErrConcurrencyConflict.
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	m := models.UserModelFromDomain(user)
	err := versionedUpdate(ctx, r.db, &models.UserModel{}, user.ID, user.Version, map[string]any{
		"full_name":       m.FullName,
		"password_hash":   m.PasswordHash,
		"status":          m.Status,
		"last_login_at":   m.LastLoginAt,
		"failed_attempts": m.FailedAttempts,
		"locked_until":    m.LockedUntil,
		"updated_at":      m.UpdatedAt,
	})
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		if exists, existsErr := rowExists(ctx, r.db, &models.UserModel{}, user.ID); existsErr == nil && !exists {
			return shared.ErrNotFound
		}
	}
	if err != nil {
		return err
	}
	user.IncrementVersion()
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if email = identity.NormalizeEmail(email); email == "" {
		return nil, shared.ErrNotFound
	}
	return r.first(ctx, "email = ?", email)
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("email = ?", identity.NormalizeEmail(email)).
		Count(&n).Error
	return n > 0, err
}

func (r *GormUserRepository) first(ctx context.Context, query string, arg any) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
