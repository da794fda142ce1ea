package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemeFromStored(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
		want  Theme
	}{
		{"dark marker", "dark", true, ThemeDark},
		{"light marker", "light", true, ThemeLight},
		{"absent", "", false, ThemeLight},
		{"empty", "", true, ThemeLight},
		{"uppercase", "DARK", true, ThemeLight},
		{"padded", " dark", true, ThemeLight},
		{"garbage", "midnight", true, ThemeLight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThemeFromStored(tt.value, tt.ok))
		})
	}
}

func TestTheme_Toggle(t *testing.T) {
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())

	for _, th := range []Theme{ThemeLight, ThemeDark} {
		assert.Equal(t, th, th.Toggle().Toggle())
	}
}

func TestTheme_RootClass(t *testing.T) {
	assert.Equal(t, "dark", ThemeDark.RootClass())
	assert.Equal(t, "", ThemeLight.RootClass())
	assert.Equal(t, "dark", ThemeDark.Marker())
	assert.Equal(t, "light", ThemeLight.Marker())
}
