package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	darkmode "github.com/thiagokokada/dark-mode-go"
)

type ThemePreference int

const (
	ThemeAuto ThemePreference = iota
	ThemeLight
	ThemeDark
)

func (p ThemePreference) String() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

func ThemePreferenceFromString(raw string) ThemePreference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark.String():
		return ThemeDark
	case ThemeLight.String():
		return ThemeLight
	default:
		return ThemeAuto
	}
}

type colorPalette struct {
	ThemeName  string
	Background string
	Foreground string
	Muted      string
	Border     string
	Accent     string
	Added      string
	Removed    string
	Meta       string
	Folder     string
	File       string
	Modified   string
	Warning    string
}

var (
	lightPalette = colorPalette{
		ThemeName:  "pulse light",
		Background: "#ffffff",
		Foreground: "#1f2328",
		Muted:      "#6e7781",
		Border:     "#d0d7de",
		Accent:     "#0969da",
		Added:      "#1a7f37",
		Removed:    "#cf222e",
		Meta:       "#0550ae",
		Folder:     "#9a6700",
		File:       "#0a3069",
		Modified:   "#bf8700",
		Warning:    "#bc4c00",
	}
	darkPalette = colorPalette{
		ThemeName:  "pulse dark",
		Background: "#0d1117",
		Foreground: "#e6edf3",
		Muted:      "#8b949e",
		Border:     "#30363d",
		Accent:     "#58a6ff",
		Added:      "#3fb950",
		Removed:    "#f85149",
		Meta:       "#79c0ff",
		Folder:     "#e3b341",
		File:       "#a5d6ff",
		Modified:   "#d29922",
		Warning:    "#db6d28",
	}
	detectDarkMode = darkmode.IsDarkMode
)

func paletteForPreference(pref ThemePreference) colorPalette {
	switch pref {
	case ThemeDark:
		return darkPalette
	case ThemeLight:
		return lightPalette
	default:
		if detectDarkMode != nil {
			if dark, err := detectDarkMode(); err == nil {
				if dark {
					return darkPalette
				}
			} else {
				slog.Debug("detect dark-mode", slog.Any("error", err))
			}
		}
		return lightPalette
	}
}

func (p colorPalette) isDark() bool {
	return strings.Contains(strings.ToLower(p.ThemeName), "dark")
}

// blend mixes two palette colours in Lab space. t=0 is a, t=1 is b. An
// unparsable colour falls back to a.
func blend(a, b string, t float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return a
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	return ca.BlendLab(cb, t).Clamped().Hex()
}

// selectionBackground tints the background towards the accent colour.
func (p colorPalette) selectionBackground() string {
	return blend(p.Background, p.Accent, 0.3)
}

type styles struct {
	title        lipgloss.Style
	border       lipgloss.Style
	activeBorder lipgloss.Style
	modalBorder  lipgloss.Style
	muted        lipgloss.Style
	text         lipgloss.Style
	accent       lipgloss.Style
	added        lipgloss.Style
	removed      lipgloss.Style
	meta         lipgloss.Style
	folder       lipgloss.Style
	file         lipgloss.Style
	modified     lipgloss.Style
	warning      lipgloss.Style
	selected     lipgloss.Style
}

func newStyles(p colorPalette) styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	return styles{
		title:        fg(p.Foreground).Bold(true),
		border:       box.BorderForeground(lipgloss.Color(p.Border)),
		activeBorder: box.BorderForeground(lipgloss.Color(p.Accent)),
		modalBorder:  box.BorderForeground(lipgloss.Color(p.Modified)).Padding(0, 1),
		muted:        fg(p.Muted),
		text:         fg(p.Foreground),
		accent:       fg(p.Accent).Bold(true),
		added:        fg(p.Added),
		removed:      fg(p.Removed),
		meta:         fg(p.Meta),
		folder:       fg(p.Folder),
		file:         fg(p.File),
		modified:     fg(p.Modified),
		warning:      fg(p.Warning),
		selected: lipgloss.NewStyle().
			Background(lipgloss.Color(p.selectionBackground())).
			Foreground(lipgloss.Color(p.Foreground)).
			Bold(true),
	}
}
