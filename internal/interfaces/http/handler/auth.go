package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/emedico/backend/internal/application/identity"
	"github.com/emedico/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves customer accounts. Accounts are optional: guests shop
// and check out on their session alone.
type AuthHandler struct {
	BaseHandler
	accounts *identity.AuthService
}

func NewAuthHandler(accounts *identity.AuthService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,min=1,max=200" example:"Jane Doe"`
	Email    string `json:"email" binding:"required,email,max=254" example:"jane@example.com"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest signs in. Remember also issues a refresh token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=128"`
	Remember bool   `json:"remember"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally names a refresh token to revoke with the access token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse omits the refresh fields unless "remember me" was asked for.
type TokenResponse struct {
	AccessToken           string     `json:"access_token"`
	RefreshToken          string     `json:"refresh_token,omitempty"`
	AccessTokenExpiresAt  time.Time  `json:"access_token_expires_at"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	TokenType             string     `json:"token_type"`
}

type AccountResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SignInResponse struct {
	Token TokenResponse   `json:"token"`
	User  AccountResponse `json:"user"`
}

func toAccount(u identity.UserInfo) AccountResponse {
	return AccountResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func toSignIn(r *identity.LoginResult) SignInResponse {
	return SignInResponse{
		Token: TokenResponse{
			AccessToken:           r.AccessToken,
			RefreshToken:          r.RefreshToken,
			AccessTokenExpiresAt:  r.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: r.RefreshTokenExpiresAt,
			TokenType:             r.TokenType,
		},
		User: toAccount(r.User),
	}
}

// Register handles POST /auth/register: create an account.
func (h *AuthHandler) Register(c *gin.Context) {
	req, ok := bind[RegisterRequest](c)
	if !ok {
		return
	}
	user, err := h.accounts.Register(c.Request.Context(), identity.RegisterInput(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toAccount(*user))
}

// Login handles POST /auth/login: sign in.
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := bind[LoginRequest](c)
	if !ok {
		return
	}
	result, err := h.accounts.Login(c.Request.Context(), identity.LoginInput(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSignIn(result))
}

// Refresh handles POST /auth/refresh: rotate the refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	req, ok := bind[RefreshRequest](c)
	if !ok {
		return
	}
	result, err := h.accounts.Refresh(c.Request.Context(), identity.RefreshInput(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSignIn(result))
}

// Logout handles POST /auth/logout: sign out.
// Revokes the presented access token and, when given, the refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req LogoutRequest
	if c.Request.ContentLength > 0 {
		var ok bool
		if req, ok = bind[LogoutRequest](c); !ok {
			return
		}
	}
	err := h.accounts.Logout(c.Request.Context(), identity.LogoutInput{
		AccessTokenJTI: claims.ID,
		AccessTokenTTL: claims.GetRemainingTTL(),
		RefreshToken:   req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Logged out"})
}

// Me handles GET /auth/me: current account.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	user, err := h.accounts.Account(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAccount(*user))
}
