package handler

import (
	"time"

	sessionapp "github.com/emedico/backend/internal/application/session"
	"github.com/emedico/backend/internal/domain/session"
	"github.com/emedico/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// SessionHandler serves the storefront shell state: page, scroll and theme
type SessionHandler struct {
	BaseHandler
	sessions *sessionapp.Service
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions *sessionapp.Service) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// NavigateRequest switches the current page
type NavigateRequest struct {
	Page string `json:"page" binding:"required" example:"catalog"`
}

// ScrollRequest records the viewport offset
type ScrollRequest struct {
	Y *int `json:"y" binding:"required" example:"320"`
}

// SetThemeRequest picks a theme outright
type SetThemeRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark" example:"dark"`
}

// SessionResponse is the shell state of a session
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Page      string `json:"page"`
	ScrollY   int    `json:"scroll_y"`
	Theme     string `json:"theme"`
	// RootClass is "dark" when the dark marker class applies, else ""
	RootClass string `json:"root_class"`
	UpdatedAt string `json:"updated_at"`
}

func toSessionResponse(s session.State) SessionResponse {
	return SessionResponse{
		SessionID: s.SessionID,
		Page:      s.Page.String(),
		ScrollY:   s.ScrollY,
		Theme:     s.Theme.String(),
		RootClass: s.RootClass(),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /sessions: start a storefront session.
// The initial theme comes from the client's stored preference.
func (h *SessionHandler) Create(c *gin.Context) {
	state, err := h.sessions.Create(c.Request.Context(), middleware.GetClientID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSessionResponse(state))
}

// Get handles GET /sessions/{id}: get session state.
func (h *SessionHandler) Get(c *gin.Context) {
	state, err := h.sessions.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(state))
}

// Navigate handles POST /sessions/{id}/navigate: switch page.
// Unknown pages land on home; scroll resets to the top.
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	state, err := h.sessions.Navigate(c.Request.Context(), sessionID(c), req.Page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(state))
}

// Scroll handles POST /sessions/{id}/scroll: record scroll offset.
func (h *SessionHandler) Scroll(c *gin.Context) {
	var req ScrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	state, err := h.sessions.Scroll(c.Request.Context(), sessionID(c), *req.Y)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(state))
}

// ToggleTheme handles POST /sessions/{id}/theme/toggle: flip light/dark mode.
// The new theme is persisted for the calling client.
func (h *SessionHandler) ToggleTheme(c *gin.Context) {
	state, err := h.sessions.ToggleTheme(c.Request.Context(), sessionID(c), middleware.GetClientID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(state))
}

// SetTheme handles PUT /sessions/{id}/theme: choose light or dark mode.
// The theme is persisted for the calling client.
func (h *SessionHandler) SetTheme(c *gin.Context) {
	var req SetThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	state, err := h.sessions.SetTheme(c.Request.Context(), sessionID(c), middleware.GetClientID(c), session.Theme(req.Theme))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(state))
}

// Delete handles DELETE /sessions/{id}: end a session.
// Drops the cart, prescription and chat of the session.
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), sessionID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
