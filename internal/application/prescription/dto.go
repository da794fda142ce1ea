package prescription

import (
	"io"
	"time"

	"github.com/emedico/backend/internal/domain/prescription"
	"github.com/google/uuid"
)

// UploadInput is a candidate prescription image
type UploadInput struct {
	SessionID   string
	FileName    string
	ContentType string
	// Size is the declared size; the body is still capped while reading
	Size int64
	Data io.Reader
}

// UploadState is the session's current upload as the upload view shows it
type UploadState struct {
	ID               uuid.UUID  `json:"id"`
	FileName         string     `json:"file_name"`
	ContentType      string     `json:"content_type"`
	Size             int64      `json:"size"`
	PreviewURL       string     `json:"preview_url"`
	PreviewExpiresAt time.Time  `json:"preview_expires_at"`
	ExtractedText    string     `json:"extracted_text"`
	ExtractedAt      *time.Time `json:"extracted_at,omitempty"`
	UploadedAt       time.Time  `json:"uploaded_at"`
}

func toUploadState(u *prescription.Upload, previewURL string, expiresAt time.Time) *UploadState {
	return &UploadState{
		ID:               u.ID,
		FileName:         u.FileName,
		ContentType:      u.ContentType,
		Size:             u.Size,
		PreviewURL:       previewURL,
		PreviewExpiresAt: expiresAt,
		ExtractedText:    u.ExtractedText,
		ExtractedAt:      u.ExtractedAt,
		UploadedAt:       u.CreatedAt,
	}
}
