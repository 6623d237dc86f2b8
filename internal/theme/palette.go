// Package theme holds the light/dark preference, its static color palettes
// and the lipgloss styles derived from them.
package theme

import "strings"

// Name identifies a theme.
type Name string

const (
	Light Name = "light"
	Dark  Name = "dark"
)

// Default is the theme used when nothing valid is stored.
const Default = Light

// Palette maps semantic color names to hex values.
type Palette struct {
	Background    string
	Surface       string
	Primary       string
	PrimaryText   string
	Text          string
	TextSecondary string
	Border        string
	Success       string
	Danger        string
	Warning       string
	Accent        string
	Muted         string
	Disabled      string
}

var lightPalette = Palette{
	Background:    "#f8f9fa",
	Surface:       "#ffffff",
	Primary:       "#007bff",
	PrimaryText:   "#ffffff",
	Text:          "#212529",
	TextSecondary: "#6c757d",
	Border:        "#e9ecef",
	Success:       "#28a745",
	Danger:        "#dc3545",
	Warning:       "#ffc107",
	Accent:        "#17a2b8",
	Muted:         "#f8f9fa",
	Disabled:      "#e9ecef",
}

var darkPalette = Palette{
	Background:    "#121212",
	Surface:       "#1e1e1e",
	Primary:       "#4dabf7",
	PrimaryText:   "#000000",
	Text:          "#ffffff",
	TextSecondary: "#adb5bd",
	Border:        "#343a40",
	Success:       "#51cf66",
	Danger:        "#ff6b6b",
	Warning:       "#ffd43b",
	Accent:        "#74c0fc",
	Muted:         "#2c2c2c",
	Disabled:      "#495057",
}

// PaletteFor returns the static palette for n. Unknown names get the light
// palette.
func PaletteFor(n Name) Palette {
	if n == Dark {
		return darkPalette
	}
	return lightPalette
}

// ParseName accepts "light" or "dark", ignoring case and surrounding space.
func ParseName(s string) (Name, bool) {
	switch Name(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Valid reports whether n is a known theme.
func (n Name) Valid() bool {
	return n == Light || n == Dark
}

// Other returns the opposite theme.
func (n Name) Other() Name {
	if n == Dark {
		return Light
	}
	return Dark
}

// Icon is the header glyph offering a switch to the other theme.
func (n Name) Icon() string {
	if n == Dark {
		return "☀️"
	}
	return "🌙"
}

func (n Name) String() string {
	return string(n)
}
