package session

// Theme is the light/dark visual mode preference
type Theme string

// Theme values. The string forms are also the persisted markers.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemePreferenceKey is the key the theme marker is persisted under
const ThemePreferenceKey = "eMedicoTheme"

// DarkClass is the marker class present on the document root in dark mode
const DarkClass = "dark"

// ThemeFromStored derives the initial theme from a persisted value.
// Only the exact marker "dark" selects dark; absent, empty or any other
// value selects light.
func ThemeFromStored(value string, ok bool) Theme {
	if ok && value == string(ThemeDark) {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle returns the opposite theme
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// IsDark reports whether the dark marker class should be present
func (t Theme) IsDark() bool {
	return t == ThemeDark
}

// RootClass returns the marker class for the document root, or "" in light mode
func (t Theme) RootClass() string {
	if t.IsDark() {
		return DarkClass
	}
	return ""
}

// Marker returns the string written to the preference store
func (t Theme) Marker() string {
	if t.IsDark() {
		return string(ThemeDark)
	}
	return string(ThemeLight)
}

// String returns the theme name
func (t Theme) String() string {
	return t.Marker()
}
