package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduce_Navigate(t *testing.T) {
	start := NewState("s-1", ThemeLight)
	start = Reduce(start, Scroll{Y: 840})

	for _, p := range AllPages() {
		t.Run(string(p), func(t *testing.T) {
			next := Reduce(start, Navigate{Page: string(p)})
			assert.Equal(t, p, next.Page)
			assert.Equal(t, 0, next.ScrollY)
			assert.Equal(t, 840, start.ScrollY, "input state must not change")
		})
	}

	t.Run("unknown falls back to home", func(t *testing.T) {
		at := Reduce(start, Navigate{Page: "cart"})
		next := Reduce(at, Navigate{Page: "wishlist"})
		assert.Equal(t, PageHome, next.Page)
		assert.Equal(t, 0, next.ScrollY)
	})
}

func TestReduce_ToggleTheme(t *testing.T) {
	s := NewState("s-1", ThemeLight)

	once := Reduce(s, ToggleTheme{})
	assert.Equal(t, ThemeDark, once.Theme)
	assert.Equal(t, "dark", once.RootClass())

	twice := Reduce(once, ToggleTheme{})
	assert.Equal(t, s.Theme, twice.Theme)
	assert.Equal(t, ThemeLight, s.Theme)
}

func TestReduce_Scroll(t *testing.T) {
	s := NewState("s-1", ThemeLight)
	assert.Equal(t, 120, Reduce(s, Scroll{Y: 120}).ScrollY)
	assert.Equal(t, 0, Reduce(s, Scroll{Y: -5}).ScrollY)
}

func TestReduce_SetTheme(t *testing.T) {
	s := NewState("s-1", ThemeLight)
	assert.Equal(t, ThemeDark, Reduce(s, SetTheme{Theme: ThemeDark}).Theme)
	assert.Equal(t, ThemeLight, Reduce(s, SetTheme{Theme: "sepia"}).Theme)
}

func TestReduce_NilAction(t *testing.T) {
	s := NewState("s-1", ThemeDark)
	assert.Equal(t, s, Reduce(s, nil))
}

func TestNewState(t *testing.T) {
	s := NewState("abc", ThemeDark)
	assert.Equal(t, "abc", s.SessionID)
	assert.Equal(t, PageHome, s.Page)
	assert.Equal(t, 0, s.ScrollY)
	assert.Equal(t, ThemeDark, s.Theme)
}
