package models

import (
	"time"

	"github.com/emedico/backend/internal/domain/prescription"
	"github.com/emedico/backend/internal/domain/shared"
)

// PrescriptionUploadModel holds the current upload of a session
type PrescriptionUploadModel struct {
	AggregateModel
	SessionID     string `gorm:"type:varchar(64);not null;uniqueIndex"`
	FileName      string `gorm:"type:varchar(255);not null"`
	ContentType   string `gorm:"type:varchar(100);not null"`
	Size          int64  `gorm:"not null"`
	StorageKey    string `gorm:"type:varchar(500);not null"`
	ExtractedText string `gorm:"type:text"`
	ExtractedAt   *time.Time
}

// TableName returns the table name for GORM
func (PrescriptionUploadModel) TableName() string {
	return "prescription_uploads"
}

// PrescriptionUploadModelFromDomain converts a domain upload to its model
func PrescriptionUploadModelFromDomain(u *prescription.Upload) *PrescriptionUploadModel {
	m := &PrescriptionUploadModel{
		SessionID:     u.SessionID,
		FileName:      u.FileName,
		ContentType:   u.ContentType,
		Size:          u.Size,
		StorageKey:    u.StorageKey,
		ExtractedText: u.ExtractedText,
		ExtractedAt:   u.ExtractedAt,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}

// ToDomain converts the model to a domain upload
func (m *PrescriptionUploadModel) ToDomain() *prescription.Upload {
	return &prescription.Upload{
		SessionAggregateRoot: shared.SessionAggregateRoot{
			BaseAggregateRoot: m.ToDomainAggregateRoot(),
			SessionID:         m.SessionID,
		},
		FileName:      m.FileName,
		ContentType:   m.ContentType,
		Size:          m.Size,
		StorageKey:    m.StorageKey,
		ExtractedText: m.ExtractedText,
		ExtractedAt:   m.ExtractedAt,
	}
}
