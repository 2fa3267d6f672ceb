package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// Styles holds the lipgloss styles derived from the active shell theme.
type Styles struct {
	Header   lipgloss.Style
	Window   lipgloss.Style
	Focused  lipgloss.Style
	Title    lipgloss.Style
	Button   lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Dock     lipgloss.Style
	Notice   lipgloss.Style
	Footer   lipgloss.Style
	Error    lipgloss.Style
}

// NewStyles builds styles for theme. Empty theme colours fall back to the
// terminal defaults.
func NewStyles(theme types.Theme) Styles {
	text := color(theme.Text)
	accent := color(theme.Accent)
	border := color(theme.Border)

	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Padding(0, 1),
		Window: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Foreground(text).
			Padding(0, 1),
		Focused: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Foreground(text).
			Padding(0, 1),
		Title:    lipgloss.NewStyle().Bold(true),
		Button:   lipgloss.NewStyle().Foreground(accent),
		Selected: lipgloss.NewStyle().Reverse(true).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(border),
		Dock:     lipgloss.NewStyle().Padding(0, 1),
		Notice:   lipgloss.NewStyle().Foreground(accent).Italic(true),
		Footer:   lipgloss.NewStyle().Foreground(border).Padding(0, 1),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F56")),
	}
}

func color(hex string) lipgloss.TerminalColor {
	if hex == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}
