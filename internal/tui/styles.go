package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	dropZoneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#666666")).
			Padding(1, 2).
			Width(60)

	dropZoneActiveStyle = dropZoneStyle.
				BorderForeground(lipgloss.Color("#4A90E2"))

	dropZoneDisabledStyle = dropZoneStyle.
				BorderForeground(lipgloss.Color("#333333")).
				Foreground(lipgloss.Color("#666666"))

	successStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#2E7D32")).
			Foreground(lipgloss.Color("#66BB6A")).
			Padding(0, 1).
			Width(60)

	errorStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#C62828")).
			Foreground(lipgloss.Color("#EF5350")).
			Padding(0, 1).
			Width(60)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90E2")).
			Padding(0, 2)

	buttonDisabledStyle = buttonStyle.
				Background(lipgloss.Color("#444444")).
				Foreground(lipgloss.Color("#999999"))

	outlineButtonStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, true).
				BorderForeground(lipgloss.Color("#888888")).
				Padding(0, 1)
)
