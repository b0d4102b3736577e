package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen   = lipgloss.Color("42")
	colorYellow  = lipgloss.Color("214")
	colorRed     = lipgloss.Color("196")
	colorSubtle  = lipgloss.Color("241")
	colorTrack   = lipgloss.Color("238")
	colorAccent  = lipgloss.Color("81")
	colorHeading = lipgloss.Color("255")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHeading)

	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)

	tileTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	statStyle = lipgloss.NewStyle().
			Foreground(colorHeading).
			Bold(true)
)
