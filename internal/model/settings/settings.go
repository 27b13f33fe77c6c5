package settings

// Theme is the workspace accent color identifier.
type Theme string

const (
	ThemeBlue    Theme = "blue"
	ThemePurple  Theme = "purple"
	ThemeEmerald Theme = "emerald"
	ThemeOrange  Theme = "orange"
)

// Themes lists every recognized theme value.
func Themes() []Theme {
	return []Theme{ThemeBlue, ThemePurple, ThemeEmerald, ThemeOrange}
}

// Valid reports whether t is a recognized theme.
func (t Theme) Valid() bool {
	for _, known := range Themes() {
		if t == known {
			return true
		}
	}
	return false
}

// Settings holds the persisted workspace preferences.
type Settings struct {
	Theme Theme `json:"theme"`
}

// Default returns the settings applied when storage holds none.
func Default() Settings {
	return Settings{Theme: ThemeBlue}
}

// Sanitize defaults unknown or missing theme values on read.
func (s *Settings) Sanitize() {
	if !s.Theme.Valid() {
		s.Theme = ThemeBlue
	}
}
