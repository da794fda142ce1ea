package memory

import (
	"context"
	"sync"

	"github.com/emedico/backend/internal/domain/prescription"
	"github.com/emedico/backend/internal/domain/shared"
)

// PrescriptionRepository is an in-memory prescription.UploadRepository
type PrescriptionRepository struct {
	mu      sync.RWMutex
	uploads map[string]prescription.Upload
}

// NewPrescriptionRepository creates an empty PrescriptionRepository
func NewPrescriptionRepository() *PrescriptionRepository {
	return &PrescriptionRepository{uploads: make(map[string]prescription.Upload)}
}

// FindBySession returns a copy of the session's upload
func (r *PrescriptionRepository) FindBySession(_ context.Context, sessionID string) (*prescription.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.uploads[sessionID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &stored, nil
}

// Save replaces the session's upload
func (r *PrescriptionRepository) Save(_ context.Context, u *prescription.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *u
	stored.ClearDomainEvents()
	r.uploads[u.SessionID] = stored
	return nil
}

// DeleteBySession clears the session's upload
func (r *PrescriptionRepository) DeleteBySession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.uploads, sessionID)
	return nil
}

var _ prescription.UploadRepository = (*PrescriptionRepository)(nil)
