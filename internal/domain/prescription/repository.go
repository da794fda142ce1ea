package prescription

import "context"

// UploadRepository keeps the current prescription upload of each session.
// A session has at most one upload; saving replaces the previous one.
type UploadRepository interface {
	// FindBySession returns the session's upload or shared.ErrNotFound
	FindBySession(ctx context.Context, sessionID string) (*Upload, error)
	Save(ctx context.Context, u *Upload) error
	// DeleteBySession clears the session's upload; clearing an empty
	// session is not an error
	DeleteBySession(ctx context.Context, sessionID string) error
}
