// Package tui implements the Bubble Tea front end for annoforge.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	captionPane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	toastInfoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	toastWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	toastErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
