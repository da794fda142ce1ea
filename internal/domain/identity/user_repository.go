package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository stores customer accounts. Emails are looked up in their
// normalized form; registering a taken email fails with
// shared.ErrAlreadyExists.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
