package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/emedico/backend/internal/domain/session"
	"github.com/emedico/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPreferenceStore implements session.PreferenceStore on the
// client_preferences table
type GormPreferenceStore struct {
	db *gorm.DB
}

// NewGormPreferenceStore creates a new GormPreferenceStore
func NewGormPreferenceStore(db *gorm.DB) *GormPreferenceStore {
	return &GormPreferenceStore{db: db}
}

// Get returns the stored value for key
func (s *GormPreferenceStore) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	var model models.PreferenceModel
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND pref_key = ?", clientID, key).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return model.Value, true, nil
}

// Set upserts value under key
func (s *GormPreferenceStore) Set(ctx context.Context, clientID, key, value string) error {
	model := models.PreferenceModel{
		ClientID:  clientID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "pref_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
}

var _ session.PreferenceStore = (*GormPreferenceStore)(nil)
