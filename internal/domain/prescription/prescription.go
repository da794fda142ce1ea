package prescription

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/emedico/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxFileSize is the largest accepted prescription image (5 MiB)
const MaxFileSize int64 = 5 << 20

// RejectionMessage is shown to the customer when a file is refused
const RejectionMessage = "Please upload a valid image file (JPEG, PNG, GIF)."

// AllowedContentTypes lists the accepted declared media types.
// SVG is excluded because it can carry script.
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Errors returned for refused uploads
var (
	ErrInvalidFileType = shared.NewDomainError("INVALID_FILE_TYPE", RejectionMessage)
	ErrFileTooLarge    = shared.NewDomainError("FILE_TOO_LARGE", RejectionMessage)
	ErrEmptyFile       = shared.NewDomainError("EMPTY_FILE", "The uploaded file is empty")
)

// NormalizeContentType lower-cases a declared media type and strips any
// parameters such as charset.
func NormalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// IsImageContentType reports whether a declared media type is an accepted image type
func IsImageContentType(contentType string) bool {
	return AllowedContentTypes[NormalizeContentType(contentType)]
}

// ValidateFile checks a candidate upload's declared media type and size
func ValidateFile(contentType string, size int64) error {
	if !IsImageContentType(contentType) {
		return ErrInvalidFileType
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// Upload is an accepted prescription image together with the text
// extracted from it
type Upload struct {
	shared.SessionAggregateRoot
	FileName      string
	ContentType   string
	Size          int64
	StorageKey    string
	ExtractedText string
	ExtractedAt   *time.Time
}

// NewUpload validates the file and creates an Upload record for a session
func NewUpload(sessionID, fileName, contentType string, size int64) (*Upload, error) {
	if sessionID == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Session ID cannot be empty")
	}
	if err := ValidateFile(contentType, size); err != nil {
		return nil, err
	}

	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "prescription"
	}

	u := &Upload{
		SessionAggregateRoot: shared.NewSessionAggregateRoot(sessionID),
		FileName:             name,
		ContentType:          NormalizeContentType(contentType),
		Size:                 size,
	}
	u.StorageKey = StorageKeyFor(sessionID, u.ID, name)
	return u, nil
}

// StorageKeyFor builds the object storage key of an upload
func StorageKeyFor(sessionID string, id uuid.UUID, fileName string) string {
	return fmt.Sprintf("prescriptions/%s/%s/%s", sessionID, id, fileName)
}

// RecordExtraction stores the text read from the image
func (u *Upload) RecordExtraction(text string) {
	now := time.Now()
	u.ExtractedText = text
	u.ExtractedAt = &now
	u.UpdatedAt = now
}

// HasExtraction reports whether text has been extracted
func (u *Upload) HasExtraction() bool {
	return u.ExtractedAt != nil
}
