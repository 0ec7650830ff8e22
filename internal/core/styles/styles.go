// Package styles provides shared lipgloss styles for CLI output.
package styles

import "github.com/charmbracelet/lipgloss"

// Semantic text styles used by the printer and commands.
var (
	TextPrimaryBoldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	TextSuccessStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	TextWarningStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	TextErrorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	TextMutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
