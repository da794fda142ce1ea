package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emedico/backend/internal/infrastructure/auth"
	"github.com/emedico/backend/internal/infrastructure/logger"
	"github.com/emedico/backend/internal/interfaces/http/dto"
)

const (
	HeaderAuthorization = "Authorization"
	bearerScheme        = "Bearer "
)

// Gin keys Authenticator stores the verified token under.
const (
	ClaimsKey = "auth_claims"
	UserIDKey = "auth_user_id"
)

// Authenticator checks bearer access tokens and their revocation.
type Authenticator struct {
	tokens  *auth.JWTService
	revoked auth.TokenBlacklist
	log     *zap.Logger
}

// NewAuthenticator returns an Authenticator. A nil revoked skips the
// revocation check.
func NewAuthenticator(tokens *auth.JWTService, revoked auth.TokenBlacklist, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{tokens: tokens, revoked: revoked, log: log}
}

// Require answers 401 unless the request carries a live access token.
func (a *Authenticator) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.verify(c)
		if err != nil {
			a.log.Debug("Bearer token refused", zap.String("path", c.Request.URL.Path), zap.Error(err))
			code, msg := unauthorized(err, c.GetHeader(HeaderAuthorization) != "")
			abortWithError(c, http.StatusUnauthorized, code, msg)
			return
		}
		attach(c, claims)
		c.Next()
	}
}

// Optional identifies signed-in customers and lets guests through. A bad
// token is treated as no token.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := a.verify(c); err == nil {
			attach(c, claims)
		}
		c.Next()
	}
}

func (a *Authenticator) verify(c *gin.Context) (*auth.Claims, error) {
	raw, ok := strings.CutPrefix(c.GetHeader(HeaderAuthorization), bearerScheme)
	if raw = strings.TrimSpace(raw); !ok || raw == "" {
		return nil, auth.ErrInvalidToken
	}
	claims, err := a.tokens.ValidateAccessToken(raw)
	if err != nil || a.revoked == nil || claims.ID == "" {
		return claims, err
	}

	revoked, err := a.revoked.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		// fail open: a blacklist outage must not sign every customer out
		a.log.Error("Token blacklist unavailable", zap.String("jti", claims.ID), zap.Error(err))
		return claims, nil
	}
	if revoked {
		return nil, auth.ErrTokenBlacklisted
	}
	return claims, nil
}

func attach(c *gin.Context, claims *auth.Claims) {
	c.Set(ClaimsKey, claims)
	c.Set(UserIDKey, claims.UserID)
	c.Request = c.Request.WithContext(logger.WithID(c.Request.Context(), logger.UserID, claims.UserID))
}

// unauthorized picks the error code for a refused token. A request with no
// Authorization header at all is simply unauthenticated.
func unauthorized(err error, presented bool) (code, message string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	case presented:
		return dto.ErrCodeTokenInvalid, "Invalid token"
	}
	return dto.ErrCodeUnauthorized, "Authentication required"
}

// ClaimsFrom returns the verified claims, or nil on anonymous requests.
func ClaimsFrom(c *gin.Context) *auth.Claims {
	claims, _ := c.Value(ClaimsKey).(*auth.Claims)
	return claims
}

func UserIDFrom(c *gin.Context) string { return c.GetString(UserIDKey) }
