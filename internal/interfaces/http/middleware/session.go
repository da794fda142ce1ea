package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/emedico/backend/internal/infrastructure/logger"
	"github.com/emedico/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session context keys
const (
	ClientIDKey  = "client_id"
	SessionIDKey = logger.GinSessionIDKey

	// ClientIDCookie remembers the browser between sessions so its theme
	// preference survives a new session
	ClientIDCookie = "emedico_client"
)

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// ClientIDConfig configures ClientID
type ClientIDConfig struct {
	CookieMaxAge int // seconds; 0 means one year
	Secure       bool
}

// ClientID identifies the browser from the X-Client-ID header or the client
// cookie. Browsers that send neither get a fresh ID in a cookie.
func ClientID(cfg ClientIDConfig) gin.HandlerFunc {
	if cfg.CookieMaxAge == 0 {
		cfg.CookieMaxAge = 365 * 24 * 60 * 60
	}

	return func(c *gin.Context) {
		id := c.GetHeader(HeaderClientID)
		if !clientIDPattern.MatchString(id) {
			id, _ = c.Cookie(ClientIDCookie)
		}
		if !clientIDPattern.MatchString(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientIDCookie, id, cfg.CookieMaxAge, "/", "", cfg.Secure, true)
		}

		c.Set(ClientIDKey, id)
		c.Writer.Header().Set(HeaderClientID, id)

		c.Request = c.Request.WithContext(logger.WithID(c.Request.Context(), logger.ClientID, id))
		c.Next()
	}
}

// GetClientID returns the client ID set by ClientID, or ""
func GetClientID(c *gin.Context) string {
	return c.GetString(ClientIDKey)
}

// SessionChecker reports whether a session exists
type SessionChecker interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// RequireSession resolves the :id path parameter to a live session and
// answers 404 for unknown sessions
func RequireSession(sessions SessionChecker, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param(param)
		ctx := c.Request.Context()

		ok, err := sessions.Exists(ctx, sessionID)
		if err != nil {
			logger.L(ctx).Error("Failed to look up session",
				zap.String("session_id", sessionID),
				zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
			return
		}
		if !ok {
			abortWithError(c, http.StatusNotFound, dto.ErrCodeNotFound, "Session not found")
			return
		}

		c.Set(SessionIDKey, sessionID)
		c.Request = c.Request.WithContext(logger.WithID(ctx, logger.SessionID, sessionID))
		c.Next()
	}
}

// GetSessionID returns the session resolved by RequireSession, or ""
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
