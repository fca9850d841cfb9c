// Package tui implements the full-screen console over the same services
// the CLI commands use.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#2196F3")
	colorAccent  = lipgloss.Color("#8BC34A")
	colorMuted   = lipgloss.Color("#6b7280")
	colorError   = lipgloss.Color("#e53935")
	colorBorder  = lipgloss.Color("#3b4252")
)

// Styles holds the console's lipgloss styles.
type Styles struct {
	Title     lipgloss.Style
	TabActive lipgloss.Style
	Tab       lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	Selected  lipgloss.Style
	Muted     lipgloss.Style
	Box       lipgloss.Style
	ChipOn    lipgloss.Style
	ChipOff   lipgloss.Style
}

// DefaultStyles returns the standard console theme.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1),
		TabActive: lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Underline(true).Padding(0, 1),
		Tab:       lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1),
		Status:    lipgloss.NewStyle().Foreground(colorAccent),
		Error:     lipgloss.NewStyle().Foreground(colorError),
		Help:      lipgloss.NewStyle().Foreground(colorMuted),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Muted:     lipgloss.NewStyle().Foreground(colorMuted),
		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1),
		ChipOn:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		ChipOff:   lipgloss.NewStyle().Foreground(colorMuted),
	}
}
