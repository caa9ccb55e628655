package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFC857"))
	phaseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#45B7D1"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8E53"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#96E6A1"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)
