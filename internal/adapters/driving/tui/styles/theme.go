// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// Theme is the colour palette the styles are built from.
type Theme struct {
	Accent    lipgloss.Color
	Highlight lipgloss.Color
	Text      lipgloss.Color
	Dim       lipgloss.Color
	Caution   lipgloss.Color
	Danger    lipgloss.Color
	Frame     lipgloss.Color
	Bar       lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#7C3AED"),
		Highlight: lipgloss.Color("#06B6D4"),
		Text:      lipgloss.Color("#CDD6F4"),
		Dim:       lipgloss.Color("#6C7086"),
		Caution:   lipgloss.Color("#F9E2AF"),
		Danger:    lipgloss.Color("#F38BA8"),
		Frame:     lipgloss.Color("#45475A"),
		Bar:       lipgloss.Color("#181825"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Chrome.
	Title      lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	// Profile menu.
	MenuItem   lipgloss.Style
	MenuCursor lipgloss.Style

	// Transcript. Info, Warning, Error and Answer match the reply kinds.
	UserMessage lipgloss.Style
	Info        lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
	Answer      lipgloss.Style
	Citation    lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title:  lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Normal: lipgloss.NewStyle().Foreground(theme.Text),
		Muted:  lipgloss.NewStyle().Foreground(theme.Dim),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Dim).
			Background(theme.Bar).
			Padding(0, 1),

		MenuItem:   lipgloss.NewStyle().Foreground(theme.Text),
		MenuCursor: lipgloss.NewStyle().Bold(true).Foreground(theme.Highlight),

		UserMessage: lipgloss.NewStyle().Bold(true).Foreground(theme.Highlight),
		Info:        lipgloss.NewStyle().Foreground(theme.Dim),
		Warning:     lipgloss.NewStyle().Foreground(theme.Caution),
		Error:       lipgloss.NewStyle().Foreground(theme.Danger),
		Answer:      lipgloss.NewStyle().Foreground(theme.Text).PaddingLeft(2),
		Citation:    lipgloss.NewStyle().Foreground(theme.Dim).Italic(true).PaddingLeft(4),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Reply returns the transcript style for a reply kind.
func (s *Styles) Reply(kind domain.ReplyKind) lipgloss.Style {
	switch kind {
	case domain.ReplyWarning:
		return s.Warning
	case domain.ReplyError:
		return s.Error
	case domain.ReplyAnswer:
		return s.Answer
	default:
		return s.Info
	}
}
