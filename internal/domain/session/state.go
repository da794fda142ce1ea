package session

import "time"

// State is the immutable shell state of one storefront session.
// Transitions produce new values through Reduce; a State is never
// modified in place.
type State struct {
	SessionID string    `json:"session_id"`
	Page      Page      `json:"page"`
	ScrollY   int       `json:"scroll_y"`
	Theme     Theme     `json:"theme"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState returns the initial state of a session
func NewState(sessionID string, theme Theme) State {
	return State{
		SessionID: sessionID,
		Page:      DefaultPage,
		ScrollY:   0,
		Theme:     theme,
		UpdatedAt: time.Now(),
	}
}

// RootClass returns the document root marker class for the state's theme
func (s State) RootClass() string {
	return s.Theme.RootClass()
}

// Action is a state transition request
type Action interface {
	apply(State) State
}

// Navigate switches the current page and resets the scroll offset.
// Unknown page identifiers land on the default page.
type Navigate struct {
	Page string
}

func (a Navigate) apply(s State) State {
	s.Page = ParsePage(a.Page)
	s.ScrollY = 0
	return s
}

// Scroll records the viewport scroll offset. Negative offsets clamp to 0.
type Scroll struct {
	Y int
}

func (a Scroll) apply(s State) State {
	if a.Y < 0 {
		a.Y = 0
	}
	s.ScrollY = a.Y
	return s
}

// ToggleTheme flips between light and dark
type ToggleTheme struct{}

func (ToggleTheme) apply(s State) State {
	s.Theme = s.Theme.Toggle()
	return s
}

// SetTheme replaces the theme outright
type SetTheme struct {
	Theme Theme
}

func (a SetTheme) apply(s State) State {
	if a.Theme != ThemeDark {
		a.Theme = ThemeLight
	}
	s.Theme = a.Theme
	return s
}

// Reduce applies action to state and returns the resulting state.
// A nil action returns the state unchanged.
func Reduce(state State, action Action) State {
	if action == nil {
		return state
	}
	next := action.apply(state)
	next.UpdatedAt = time.Now()
	return next
}
