package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are derived from a Theme whenever the theme changes.
type Styles struct {
	Title    lipgloss.Style
	Canvas   lipgloss.Style
	Panel    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Active   lipgloss.Style
	Muted    lipgloss.Style
	Graph    lipgloss.Style
	Running  lipgloss.Style
	Finished lipgloss.Style
	Stopped  lipgloss.Style
	Message  lipgloss.Style
	Error    lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Title).
			MarginBottom(1),
		Canvas: lipgloss.NewStyle().
			Foreground(t.Curve).
			Padding(1, 2),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(panelWidth - 6),
		Label: lipgloss.NewStyle().
			Foreground(t.Muted).
			Width(12),
		Value: lipgloss.NewStyle().
			Foreground(t.Text),
		Active: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Bracket),
		Muted: lipgloss.NewStyle().
			Foreground(t.Muted),
		Graph: lipgloss.NewStyle().
			Foreground(t.Curve).
			Padding(1, 0),
		Running: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Success),
		Finished: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),
		Stopped: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Warning),
		Message: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent).
			MarginTop(1),
		Error: lipgloss.NewStyle().
			Foreground(t.Error).
			MarginTop(1),
	}
}

// ProgressBar renders how much of the iteration budget has been used.
func ProgressBar(used, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := used * width / total
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
