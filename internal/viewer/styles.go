package viewer

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tOgg1/lightbox/internal/models"
)

// Theme defines the viewer's style tokens.
type Theme struct {
	Name string

	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string

	Header string
	Footer string
	Arrow  string
	Notice string

	// Kind colors key the per-kind accent used on preview cards.
	Kind map[models.AttachmentKind]string
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// DefaultTheme is the baseline dark palette.
var DefaultTheme = Theme{
	Name:       "default",
	Background: "234",
	Foreground: "252",
	Muted:      "245",
	Accent:     "75",
	Border:     "240",
	Header:     "111",
	Footer:     "110",
	Arrow:      "75",
	Notice:     "214",
	Kind: map[models.AttachmentKind]string{
		models.AttachmentKindImage:    "114",
		models.AttachmentKindVideo:    "176",
		models.AttachmentKindAudio:    "180",
		models.AttachmentKindDocument: "75",
		models.AttachmentKindFile:     "245",
	},
}

// HighContrastTheme maximizes legibility on washed-out terminals.
var HighContrastTheme = Theme{
	Name:       "high-contrast",
	Background: "0",
	Foreground: "15",
	Muted:      "7",
	Accent:     "11",
	Border:     "15",
	Header:     "14",
	Footer:     "14",
	Arrow:      "11",
	Notice:     "9",
	Kind: map[models.AttachmentKind]string{
		models.AttachmentKindImage:    "10",
		models.AttachmentKindVideo:    "13",
		models.AttachmentKindAudio:    "11",
		models.AttachmentKindDocument: "14",
		models.AttachmentKindFile:     "7",
	},
}

// ThemeByName resolves a configured theme name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	if theme, ok := Themes[name]; ok {
		return theme
	}
	return DefaultTheme
}

func (t Theme) headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Header)).Bold(true)
}

func (t Theme) footerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Footer))
}

func (t Theme) mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
}

func (t Theme) accentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))
}

func (t Theme) arrowStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Arrow)).Bold(true)
}

func (t Theme) noticeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Notice)).Bold(true)
}

func (t Theme) kindStyle(kind models.AttachmentKind) lipgloss.Style {
	color, ok := t.Kind[kind]
	if !ok {
		color = t.Muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (t Theme) cardBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Border)).
		Padding(0, 1)
}
