package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines all lipgloss styles used in the CLI
var Styles = struct {
	Bold       lipgloss.Style
	NodeLabel  lipgloss.Style
	EdgeLabel  lipgloss.Style
	Subject    lipgloss.Style
	SummaryBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Bold: lipgloss.NewStyle().Bold(true),

	NodeLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("42")),

	EdgeLabel: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Subject: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")),

	SummaryBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("42")).
		Padding(0, 1).
		Width(60),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 1).
		Width(60),
}
