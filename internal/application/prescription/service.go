package prescription

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emedico/backend/internal/application/locks"
	"github.com/emedico/backend/internal/domain/prescription"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPreviewTTL is how long a preview URL stays valid
const DefaultPreviewTTL = 15 * time.Minute

// Service handles prescription uploads. A session holds at most one
// upload; a refused file clears whatever the session had before.
type Service struct {
	uploads    prescription.UploadRepository
	storage    ImageStore
	extractor  prescription.Extractor
	previewTTL time.Duration
	metrics    *telemetry.StorefrontMetrics
	locks      *locks.KeyedMutex
	logger     *zap.Logger
}

// NewService creates a new prescription service
func NewService(
	uploads prescription.UploadRepository,
	storage ImageStore,
	extractor prescription.Extractor,
	previewTTL time.Duration,
	logger *zap.Logger,
) *Service {
	if previewTTL <= 0 {
		previewTTL = DefaultPreviewTTL
	}
	return &Service{
		uploads:    uploads,
		storage:    storage,
		extractor:  extractor,
		previewTTL: previewTTL,
		locks:      locks.NewKeyedMutex(),
		logger:     logger,
	}
}

// SetMetrics sets the storefront metrics recorder
func (s *Service) SetMetrics(m *telemetry.StorefrontMetrics) {
	s.metrics = m
}

// Upload validates, stores and reads a prescription image
func (s *Service) Upload(ctx context.Context, input UploadInput) (*UploadState, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "prescription", "upload",
		telemetry.WithAttribute(telemetry.SpanAttrSessionID, input.SessionID),
		telemetry.WithAttribute(telemetry.SpanAttrContentType, input.ContentType))
	defer span.End()

	unlock := s.locks.Lock(input.SessionID)
	defer unlock()

	upload, err := prescription.NewUpload(input.SessionID, input.FileName, input.ContentType, input.Size)
	if err != nil {
		return nil, s.reject(ctx, input.SessionID, err)
	}

	data, err := readCapped(input.Data)
	if err != nil {
		return nil, s.reject(ctx, input.SessionID, err)
	}
	upload.Size = int64(len(data))

	previous, err := s.uploads.FindBySession(ctx, input.SessionID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.storage.Put(ctx, upload.StorageKey, data, upload.ContentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("store prescription image: %w", err)
	}

	text, err := s.extractor.Extract(ctx, upload.FileName, upload.ContentType, bytes.NewReader(data))
	if err != nil {
		if ctx.Err() != nil {
			s.deleteObject(ctx, upload.StorageKey)
			return nil, ctx.Err()
		}
		s.logger.Warn("Prescription text extraction failed",
			zap.String("session_id", input.SessionID),
			zap.String("file_name", upload.FileName),
			zap.Error(err))
	} else {
		upload.RecordExtraction(text)
	}

	if err := s.uploads.Save(ctx, upload); err != nil {
		s.deleteObject(ctx, upload.StorageKey)
		return nil, err
	}
	if previous != nil && previous.StorageKey != upload.StorageKey {
		s.deleteObject(ctx, previous.StorageKey)
	}

	s.metrics.RecordPrescriptionUpload(ctx, upload.Size)
	s.logger.Info("Prescription uploaded",
		zap.String("session_id", input.SessionID),
		zap.String("upload_id", upload.ID.String()),
		zap.Int64("size", upload.Size))

	return s.stateOf(ctx, upload)
}

// Get returns the session's current upload or shared.ErrNotFound
func (s *Service) Get(ctx context.Context, sessionID string) (*UploadState, error) {
	upload, err := s.uploads.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.stateOf(ctx, upload)
}

// AcceptedID returns the ID of the session's upload, or nil when the
// session has none
func (s *Service) AcceptedID(ctx context.Context, sessionID string) (*uuid.UUID, error) {
	upload, err := s.uploads.FindBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	id := upload.ID
	return &id, nil
}

// Clear removes the session's upload and its stored image
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.clear(ctx, sessionID)
}

// reject clears the session's previous state and returns cause
func (s *Service) reject(ctx context.Context, sessionID string, cause error) error {
	if err := s.clear(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to clear prescription after rejection",
			zap.String("session_id", sessionID), zap.Error(err))
	}
	s.metrics.RecordPrescriptionRejection(ctx, shared.CodeOf(cause))
	return cause
}

func (s *Service) clear(ctx context.Context, sessionID string) error {
	upload, err := s.uploads.FindBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.uploads.DeleteBySession(ctx, sessionID); err != nil {
		return err
	}
	s.deleteObject(ctx, upload.StorageKey)
	return nil
}

func (s *Service) deleteObject(ctx context.Context, key string) {
	if err := s.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("Failed to delete prescription image",
			zap.String("storage_key", key), zap.Error(err))
	}
}

func (s *Service) stateOf(ctx context.Context, upload *prescription.Upload) (*UploadState, error) {
	url, expiresAt, err := s.storage.PreviewURL(ctx, upload.StorageKey, s.previewTTL)
	if err != nil {
		return nil, fmt.Errorf("generate preview url: %w", err)
	}
	return toUploadState(upload, url, expiresAt), nil
}

// readCapped reads r, refusing bodies over the size limit
func readCapped(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, prescription.ErrEmptyFile
	}
	data, err := io.ReadAll(io.LimitReader(r, prescription.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read prescription image: %w", err)
	}
	if int64(len(data)) > prescription.MaxFileSize {
		return nil, prescription.ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, prescription.ErrEmptyFile
	}
	return data, nil
}
