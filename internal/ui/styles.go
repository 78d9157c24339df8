package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPrimary = lipgloss.Color("#3B82F6")
	ColorSuccess = lipgloss.Color("#10B981")
	ColorWarning = lipgloss.Color("#F59E0B")
	ColorError   = lipgloss.Color("#EF4444")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorText    = lipgloss.Color("#E5E7EB")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2)

	StatusStyle  = lipgloss.NewStyle().Foreground(ColorSuccess)
	NoticeStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	ScoreStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	LabelStyle   = lipgloss.NewStyle().Width(14).Foreground(ColorText)
	AdviceStyle  = lipgloss.NewStyle().Italic(true).Foreground(ColorText)
	HelpKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
)
