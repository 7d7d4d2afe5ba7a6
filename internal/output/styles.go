package output

import "github.com/charmbracelet/lipgloss"

// Colors used by the CLI renderers.
var (
	colorRed    = lipgloss.Color("#FF5555")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorGray   = lipgloss.Color("#666666")
	colorWhite  = lipgloss.Color("#FFFFFF")
)

// Base styles reused by the renderers.
var (
	BoldStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	MutedStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	AppStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)
)
