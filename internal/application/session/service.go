package session

import (
	"context"
	"errors"

	"github.com/emedico/backend/internal/application/locks"
	"github.com/emedico/backend/internal/domain/session"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CloseHook runs when a session is deleted
type CloseHook func(ctx context.Context, sessionID string)

// Service is the single owner of every session's shell state. Handlers
// receive copies; all transitions go through Reduce under a per-session
// lock.
type Service struct {
	states  session.StateRepository
	prefs   session.PreferenceStore
	locks   *locks.KeyedMutex
	metrics *telemetry.StorefrontMetrics
	hooks   []CloseHook
	logger  *zap.Logger
}

// NewService creates a new session service
func NewService(states session.StateRepository, prefs session.PreferenceStore, logger *zap.Logger) *Service {
	return &Service{
		states: states,
		prefs:  prefs,
		locks:  locks.NewKeyedMutex(),
		logger: logger,
	}
}

// SetMetrics sets the storefront metrics recorder
func (s *Service) SetMetrics(m *telemetry.StorefrontMetrics) {
	s.metrics = m
}

// OnClose registers a hook run after a session is deleted
func (s *Service) OnClose(hook CloseHook) {
	s.hooks = append(s.hooks, hook)
}

// Create starts a session. The initial theme comes from the preference
// stored for clientID, or for the new session ID when clientID is empty.
func (s *Service) Create(ctx context.Context, clientID string) (session.State, error) {
	id := uuid.NewString()
	scope := preferenceScope(clientID, id)

	stored, ok, err := s.prefs.Get(ctx, scope, session.ThemePreferenceKey)
	if err != nil {
		s.logger.Warn("Failed to read theme preference",
			zap.String("client_id", scope), zap.Error(err))
		stored, ok = "", false
	}

	state := session.NewState(id, session.ThemeFromStored(stored, ok))
	s.persistTheme(ctx, scope, state.Theme, stored, ok)

	if err := s.states.Save(ctx, state); err != nil {
		return session.State{}, err
	}
	s.logger.Debug("Session created", zap.String("session_id", id), zap.String("theme", state.Theme.String()))
	return state, nil
}

// Get returns the current state of a session
func (s *Service) Get(ctx context.Context, sessionID string) (session.State, error) {
	return s.states.FindByID(ctx, sessionID)
}

// Exists reports whether a session is known
func (s *Service) Exists(ctx context.Context, sessionID string) (bool, error) {
	_, err := s.states.FindByID(ctx, sessionID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Navigate switches the session's page
func (s *Service) Navigate(ctx context.Context, sessionID, page string) (session.State, error) {
	state, err := s.Dispatch(ctx, sessionID, "", session.Navigate{Page: page})
	if err == nil {
		s.metrics.RecordNavigation(ctx, state.Page.String())
	}
	return state, err
}

// Scroll records the session's scroll offset
func (s *Service) Scroll(ctx context.Context, sessionID string, y int) (session.State, error) {
	return s.Dispatch(ctx, sessionID, "", session.Scroll{Y: y})
}

// ToggleTheme flips the theme and persists the new marker for clientID
func (s *Service) ToggleTheme(ctx context.Context, sessionID, clientID string) (session.State, error) {
	state, err := s.Dispatch(ctx, sessionID, clientID, session.ToggleTheme{})
	if err == nil {
		s.metrics.RecordThemeToggle(ctx, state.Theme.String())
	}
	return state, err
}

// SetTheme replaces the theme and persists the marker for clientID
func (s *Service) SetTheme(ctx context.Context, sessionID, clientID string, theme session.Theme) (session.State, error) {
	return s.Dispatch(ctx, sessionID, clientID, session.SetTheme{Theme: theme})
}

// Dispatch applies action to the session's latest state and stores the
// result. A theme change is written to the preference store when it
// differs from the stored marker.
func (s *Service) Dispatch(ctx context.Context, sessionID, clientID string, action session.Action) (session.State, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	current, err := s.states.FindByID(ctx, sessionID)
	if err != nil {
		return session.State{}, err
	}

	next := session.Reduce(current, action)
	if next.Theme != current.Theme {
		s.syncTheme(ctx, preferenceScope(clientID, sessionID), next.Theme)
	}

	if err := s.states.Save(ctx, next); err != nil {
		return session.State{}, err
	}
	return next, nil
}

// Delete forgets a session and runs the close hooks
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	err := s.states.Delete(ctx, sessionID)
	unlock()
	if err != nil {
		return err
	}

	for _, hook := range s.hooks {
		hook(ctx, sessionID)
	}
	s.logger.Debug("Session closed", zap.String("session_id", sessionID))
	return nil
}

// syncTheme reads the stored marker and writes theme when it differs
func (s *Service) syncTheme(ctx context.Context, scope string, theme session.Theme) {
	stored, ok, err := s.prefs.Get(ctx, scope, session.ThemePreferenceKey)
	if err != nil {
		s.logger.Warn("Failed to read theme preference",
			zap.String("client_id", scope), zap.Error(err))
		// Unknown stored value: write through
		ok = false
	}
	s.persistTheme(ctx, scope, theme, stored, ok)
}

func (s *Service) persistTheme(ctx context.Context, scope string, theme session.Theme, stored string, ok bool) {
	marker := theme.Marker()
	if ok && stored == marker {
		return
	}
	if err := s.prefs.Set(ctx, scope, session.ThemePreferenceKey, marker); err != nil {
		s.logger.Warn("Failed to persist theme preference",
			zap.String("client_id", scope),
			zap.String("theme", marker),
			zap.Error(err))
	}
}

func preferenceScope(clientID, sessionID string) string {
	if clientID != "" {
		return clientID
	}
	return sessionID
}
