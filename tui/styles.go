package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used to draw the search box.
type Styles struct {
	Prompt lipgloss.Style
	Panel  lipgloss.Style
	Title  lipgloss.Style
	Module lipgloss.Style
	Status lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
	Help   lipgloss.Style
}

// DefaultStyles returns the built-in styles.
func DefaultStyles() Styles {
	return Styles{
		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Title:  lipgloss.NewStyle().Bold(true),
		Module: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
