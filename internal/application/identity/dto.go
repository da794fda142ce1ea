package identity

import (
	"time"

	"github.com/emedico/backend/internal/domain/identity"
	"github.com/google/uuid"
)

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
	// Remember asks for a refresh token so the session survives the
	// access token's expiry
	Remember bool
}

// LoginResult is returned by Login and Refresh
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt *time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo is the account as shown to its owner
type UserInfo struct {
	ID          uuid.UUID
	Email       string
	FullName    string
	LastLoginAt *time.Time
	CreatedAt   time.Time
}

type RefreshInput struct {
	RefreshToken string
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	AccessTokenJTI string
	AccessTokenTTL time.Duration
	// RefreshToken is revoked too when supplied
	RefreshToken string
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
