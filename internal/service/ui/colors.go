package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// TitleStyle uses ANSI 6 (cyan), readable on light and dark terminals
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (green) for arguments and usage
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (gray) for secondary text
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (yellow) for flags
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	// PromptStyle marks the assistant's replies in the REPL
	PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
)

// Similarity thresholds used when highlighting retrieval scores.
const (
	StrongMatch = 0.5
	WeakMatch   = 0.3
)

// Score renders a similarity value colored by how useful the match is.
func Score(sim float64) string {
	s := fmt.Sprintf("%.3f", sim)
	switch {
	case sim >= StrongMatch:
		return UsageStyle.Render(s)
	case sim >= WeakMatch:
		return FlagStyle.Render(s)
	default:
		return DescStyle.Render(s)
	}
}
