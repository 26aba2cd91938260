package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	// LabelStyle for summary labels.
	LabelStyle = lipgloss.NewStyle().Faint(true).Width(18)

	// PanelStyle frames the summary and the equity curve.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// FormatPnL formats a PnL value with an up or down marker.
func FormatPnL(value float64) string {
	s := fmt.Sprintf("%.2f", value)

	if value > 0 {
		return s + " ▲"
	} else if value < 0 {
		return s + " ▼"
	}

	return s
}
