package persistence

import (
	"context"

	"github.com/emedico/backend/internal/domain/prescription"
	"github.com/emedico/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPrescriptionRepository implements prescription.UploadRepository
type GormPrescriptionRepository struct {
	db *gorm.DB
}

// NewGormPrescriptionRepository creates a new GormPrescriptionRepository
func NewGormPrescriptionRepository(db *gorm.DB) *GormPrescriptionRepository {
	return &GormPrescriptionRepository{db: db}
}

// FindBySession returns the current upload of a session
func (r *GormPrescriptionRepository) FindBySession(ctx context.Context, sessionID string) (*prescription.Upload, error) {
	var model models.PrescriptionUploadModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save stores u as the session's upload, replacing any earlier one
func (r *GormPrescriptionRepository) Save(ctx context.Context, u *prescription.Upload) error {
	model := models.PrescriptionUploadModelFromDomain(u)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ? AND id <> ?", u.SessionID, u.ID).
			Delete(&models.PrescriptionUploadModel{}).Error; err != nil {
			return err
		}
		return tx.Save(model).Error
	})
}

// DeleteBySession clears the session's upload
func (r *GormPrescriptionRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.PrescriptionUploadModel{}).Error
}

var _ prescription.UploadRepository = (*GormPrescriptionRepository)(nil)
