package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the terminal view's lipgloss styles.
type Styles struct {
	Title   lipgloss.Style
	Banner  lipgloss.Style
	Search  lipgloss.Style
	Focused lipgloss.Style
	Status  lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		Banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("160")).
			Padding(0, 1),
		Search:  border,
		Focused: border.BorderForeground(lipgloss.Color("212")),
		Status:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
