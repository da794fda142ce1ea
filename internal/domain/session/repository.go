package session

import "context"

// StateRepository keeps the latest shell state of each session
type StateRepository interface {
	// FindByID returns the state of a session or shared.ErrNotFound
	FindByID(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, state State) error
	// Delete forgets a session; deleting an unknown session is not an error
	Delete(ctx context.Context, sessionID string) error
}
