// Package identity signs customers up and in. Tokens are JWTs; logout and
// refresh rotation revoke token IDs through a TokenBlacklist.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emedico/backend/internal/domain/identity"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/infrastructure/auth"
)

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountLocked      = shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
	ErrAccountInactive    = shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	ErrEmailTaken         = shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	ErrTokenExpired       = shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	ErrTokenInvalid       = shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	ErrTokenRevoked       = shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
)

// Lockout locks an account for Duration after MaxAttempts wrong passwords in
// a row. MaxAttempts <= 0 disables it.
type Lockout struct {
	MaxAttempts int
	Duration    time.Duration
}

func DefaultLockout() Lockout {
	return Lockout{MaxAttempts: 5, Duration: 15 * time.Minute}
}

type AuthService struct {
	users     identity.UserRepository
	tokens    *auth.JWTService
	revoked   auth.TokenBlacklist
	publisher shared.EventPublisher
	lockout   Lockout
	log       *zap.Logger
}

// NewAuthService wires the account flows. publisher may be nil.
func NewAuthService(
	users identity.UserRepository,
	tokens *auth.JWTService,
	revoked auth.TokenBlacklist,
	publisher shared.EventPublisher,
	lockout Lockout,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		revoked:   revoked,
		publisher: publisher,
		lockout:   lockout,
		log:       log,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*UserInfo, error) {
	taken, err := s.users.ExistsByEmail(ctx, identity.NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	user, err := identity.NewUser(in.FullName, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	// a concurrent sign-up can still win the unique index
	if err := s.users.Create(ctx, user); errors.Is(err, shared.ErrAlreadyExists) {
		return nil, ErrEmailTaken
	} else if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, user.GetDomainEvents()...); err != nil {
			s.log.Warn("Publishing registration failed", zap.Error(err))
		}
	}
	user.ClearDomainEvents()

	s.log.Info("Account registered", zap.Stringer("user_id", user.ID))
	info := toUserInfo(user)
	return &info, nil
}

// Login checks the password and issues tokens. Unknown emails and wrong
// passwords get the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := loginAllowed(user); err != nil {
		return nil, err
	}

	if !user.VerifyPassword(in.Password) {
		locked := user.RecordLoginFailure(s.lockout.MaxAttempts, s.lockout.Duration)
		s.save(ctx, user)
		if locked {
			s.log.Warn("Account locked", zap.Stringer("user_id", user.ID), zap.Int("attempts", user.FailedAttempts))
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Email: user.Email, Remember: in.Remember})
	if err != nil {
		return nil, err
	}
	user.RecordLoginSuccess()
	s.save(ctx, user)

	s.log.Info("Signed in", zap.Stringer("user_id", user.ID), zap.Bool("remember", in.Remember))
	return loginResult(pair, user), nil
}

// Refresh trades a refresh token for a new pair. The spent token is revoked,
// so each refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (*LoginResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(in.RefreshToken)
	if errors.Is(err, auth.ErrExpiredToken) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, ErrTokenInvalid
	}

	spent, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if spent {
		s.log.Warn("Spent refresh token presented", zap.String("user_id", claims.UserID))
		return nil, ErrTokenRevoked
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	if !user.CanLogin() {
		return nil, ErrAccountInactive
	}

	pair, _, err := s.tokens.RefreshTokenPair(in.RefreshToken, user.Email)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.log.Error("Revoking spent refresh token failed", zap.Error(err))
	}
	return loginResult(pair, user), nil
}

// Logout revokes the access token and, when given, the refresh token. A
// refresh token that no longer validates has nothing left to revoke.
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	if in.AccessTokenJTI != "" {
		if err := s.revoked.Revoke(ctx, in.AccessTokenJTI, in.AccessTokenTTL); err != nil {
			return err
		}
	}
	if in.RefreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.GetRemainingTTL())
}

func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revoked.IsRevoked(ctx, jti)
}

// Account returns the signed-in customer's profile.
func (s *AuthService) Account(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// save persists login bookkeeping. Losing it must not fail the login.
func (s *AuthService) save(ctx context.Context, user *identity.User) {
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Error("Saving login state failed", zap.Stringer("user_id", user.ID), zap.Error(err))
	}
}

func loginAllowed(user *identity.User) error {
	switch {
	case user.IsLocked():
		return ErrAccountLocked
	case !user.CanLogin():
		return ErrAccountInactive
	}
	return nil
}

func loginResult(pair *auth.TokenPair, user *identity.User) *LoginResult {
	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  toUserInfo(user),
	}
}
