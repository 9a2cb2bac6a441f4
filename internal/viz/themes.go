package viz

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme colours terminal previews and summaries.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
}

var Themes = map[string]Theme{
	"cyberpunk": {
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Muted:     lipgloss.Color("#666666"),
	},
	"retro": {
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Muted:     lipgloss.Color("#005500"),
	},
	"minimal": {
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Muted:     lipgloss.Color("#888888"),
	},
	"ocean": {
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Muted:     lipgloss.Color("#4488aa"),
	},
}

// GetTheme returns the named theme, or minimal for unknown names.
func GetTheme(name string) Theme {
	if t, ok := Themes[name]; ok {
		return t
	}
	return Themes["minimal"]
}

func ThemeNames() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paint renders a braille canvas in the theme's primary colour.
func (t Theme) Paint(c *Canvas) string {
	return lipgloss.NewStyle().Foreground(t.Primary).Render(c.String())
}

// Heading renders s as a gradient from primary to secondary.
func (t Theme) Heading(s string) string {
	return GradientText(s, t.Primary, t.Secondary)
}
