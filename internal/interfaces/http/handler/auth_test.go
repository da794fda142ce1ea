package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/emedico/backend/internal/application/identity"
	"github.com/emedico/backend/internal/infrastructure/auth"
	"github.com/emedico/backend/internal/infrastructure/config"
	"github.com/emedico/backend/internal/infrastructure/persistence/memory"
	"github.com/emedico/backend/internal/interfaces/http/dto"
	"github.com/emedico/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-that-is-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-at-least-32-characters",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "emedico-test",
	}
}

func newAuthFixture(t *testing.T) *storefront {
	t.Helper()
	logger := zap.NewNop()
	jwtService := auth.NewJWTService(testJWTConfig())
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := identity.NewAuthService(memory.NewUserRepository(), jwtService, blacklist, nil,
		identity.DefaultLockout(), logger)
	h := NewAuthHandler(svc)

	middleware.SetupValidator()
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	protected := r.Group("/auth", middleware.NewAuthenticator(jwtService, blacklist, nil).Require())
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
	return &storefront{engine: r}
}

func register(t *testing.T, sf *storefront) {
	t.Helper()
	w := sf.do(t, http.MethodPost, "/auth/register", map[string]string{
		"full_name": "Jane Doe",
		"email":     "jane@example.com",
		"password":  "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func login(t *testing.T, sf *storefront, remember bool) SignInResponse {
	t.Helper()
	w := sf.do(t, http.MethodPost, "/auth/login", map[string]any{
		"email":    "jane@example.com",
		"password": "correct-horse",
		"remember": remember,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp SignInResponse
	dataAs(t, w, &resp)
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	sf := newAuthFixture(t)

	w := sf.do(t, http.MethodPost, "/auth/register", map[string]string{
		"full_name": "Jane Doe",
		"email":     "jane@example.com",
		"password":  "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user AccountResponse
	dataAs(t, w, &user)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane Doe", user.FullName)

	w = sf.do(t, http.MethodPost, "/auth/register", map[string]string{
		"full_name": "Jane Again",
		"email":     "jane@example.com",
		"password":  "another-password",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeAlreadyExists, decodeResponse(t, w).Error.Code)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	sf := newAuthFixture(t)

	w := sf.do(t, http.MethodPost, "/auth/register", map[string]string{
		"full_name": "Jane Doe",
		"email":     "not-an-email",
		"password":  "short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	fields := make([]string, 0, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password"}, fields)
}

func TestAuthHandler_Login(t *testing.T) {
	sf := newAuthFixture(t)
	register(t, sf)

	session := login(t, sf, false)
	assert.NotEmpty(t, session.Token.AccessToken)
	assert.Empty(t, session.Token.RefreshToken)
	assert.Nil(t, session.Token.RefreshTokenExpiresAt)
	assert.Equal(t, "Bearer", session.Token.TokenType)

	remembered := login(t, sf, true)
	assert.NotEmpty(t, remembered.Token.RefreshToken)
	assert.NotNil(t, remembered.Token.RefreshTokenExpiresAt)
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	sf := newAuthFixture(t)
	register(t, sf)

	w := sf.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, decodeResponse(t, w).Error.Code)

	w = sf.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, decodeResponse(t, w).Error.Code)
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	sf := newAuthFixture(t)
	register(t, sf)
	session := login(t, sf, true)
	bearer := "Bearer " + session.Token.AccessToken

	w := sf.do(t, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = sf.do(t, http.MethodGet, "/auth/me", nil, middleware.HeaderAuthorization, bearer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me AccountResponse
	dataAs(t, w, &me)
	assert.Equal(t, session.User.ID, me.ID)

	w = sf.do(t, http.MethodPost, "/auth/logout",
		map[string]string{"refresh_token": session.Token.RefreshToken},
		middleware.HeaderAuthorization, bearer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = sf.do(t, http.MethodGet, "/auth/me", nil, middleware.HeaderAuthorization, bearer)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = sf.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": session.Token.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	sf := newAuthFixture(t)
	register(t, sf)
	session := login(t, sf, true)

	w := sf.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": session.Token.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refreshed SignInResponse
	dataAs(t, w, &refreshed)
	assert.NotEmpty(t, refreshed.Token.AccessToken)
	assert.Equal(t, session.User.Email, refreshed.User.Email)

	w = sf.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = sf.do(t, http.MethodPost, "/auth/refresh", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
