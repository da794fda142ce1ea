// Package auth issues and checks the JWTs customer accounts sign in with.
package auth

import (
	"errors"
	"time"

	"github.com/emedico/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// Claims are the registered claims plus the customer they were issued to.
// The JWT ID is what logout and refresh rotation revoke.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	TokenType TokenType `json:"token_type"`
}

func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetRemainingTTL is how long a revocation of this token must be kept
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// TokenPair is returned by login and refresh. Without "remember me" there
// is no refresh token and the session ends with the access token.
type TokenPair struct {
	AccessToken           string     `json:"access_token"`
	RefreshToken          string     `json:"refresh_token,omitempty"`
	AccessTokenExpiresAt  time.Time  `json:"access_token_expires_at"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	TokenType             string     `json:"token_type"`
}

type GenerateTokenInput struct {
	UserID   uuid.UUID
	Email    string
	Remember bool
}

// signer holds what differs between the two token kinds
type signer struct {
	typ    TokenType
	secret []byte
	ttl    time.Duration
}

// JWTService signs HS256 tokens. Access and refresh tokens use separate
// secrets unless no refresh secret is configured.
type JWTService struct {
	access  signer
	refresh signer
	issuer  string
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		access:  signer{typ: TokenTypeAccess, secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
		refresh: signer{typ: TokenTypeRefresh, secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		issuer:  cfg.Issuer,
	}
}

// GenerateTokenPair signs an access token, and a refresh token when the
// customer asked to be remembered. Refresh tokens carry no email.
func (s *JWTService) GenerateTokenPair(in GenerateTokenInput) (*TokenPair, error) {
	now := time.Now()
	access, err := s.sign(s.access, s.claims(s.access, in.UserID, in.Email, now))
	if err != nil {
		return nil, err
	}
	pair := &TokenPair{AccessToken: access, AccessTokenExpiresAt: now.Add(s.access.ttl), TokenType: "Bearer"}
	if !in.Remember {
		return pair, nil
	}

	refresh, err := s.sign(s.refresh, s.claims(s.refresh, in.UserID, "", now))
	if err != nil {
		return nil, err
	}
	until := now.Add(s.refresh.ttl)
	pair.RefreshToken = refresh
	pair.RefreshTokenExpiresAt = &until
	return pair, nil
}

// RefreshTokenPair trades a refresh token for a fresh pair and returns the
// spent token's claims so the caller can revoke it.
func (s *JWTService) RefreshTokenPair(refreshToken, email string) (*TokenPair, *Claims, error) {
	old, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	userID, err := old.GetUserUUID()
	if err != nil {
		return nil, nil, ErrInvalidClaims
	}
	pair, err := s.GenerateTokenPair(GenerateTokenInput{UserID: userID, Email: email, Remember: true})
	if err != nil {
		return nil, nil, err
	}
	return pair, old, nil
}

func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.verify(s.access, token)
}

func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.verify(s.refresh, token)
}

func (s *JWTService) claims(k signer, userID uuid.UUID, email string, now time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(k.ttl)),
		},
		UserID:    userID.String(),
		Email:     email,
		TokenType: k.typ,
	}
}

func (s *JWTService) sign(k signer, c *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(k.secret)
}

func (s *JWTService) verify(k signer, raw string) (*Claims, error) {
	c := &Claims{}
	token, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (any, error) { return k.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil, !token.Valid:
		return nil, ErrInvalidToken
	case c.TokenType != k.typ:
		return nil, ErrInvalidTokenType
	case c.UserID == "":
		return nil, ErrMissingUserID
	}
	return c, nil
}
