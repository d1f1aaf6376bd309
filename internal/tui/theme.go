// Package tui provides the terminal UI pieces of the GraphDeck CLI, built on
// the bubbletea framework. Its main user is the deploy workflow, which shows
// a spinner with live revision status during the long poll phases.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette - GraphDeck brand theme (violet on dark)
var (
	// Primary brand color - Violet
	ColorPrimary = lipgloss.Color("135")

	// Secondary brand color - Light violet
	ColorSecondary = lipgloss.Color("141")

	// Gray for secondary text
	ColorGray = lipgloss.Color("240")

	// Success indicator - Green
	ColorSuccess = lipgloss.Color("42")

	// Error indicator - Red
	ColorError = lipgloss.Color("196")

	// Warning indicator - Yellow
	ColorWarning = lipgloss.Color("214")
)

var (
	// SpinnerStyle colors the spinner glyph
	SpinnerStyle = lipgloss.NewStyle().Foreground(ColorPrimary)

	// SuccessStyle renders the success check mark
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)

	// ErrorStyle renders the failure cross
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorError)

	// MutedStyle renders secondary detail text
	MutedStyle = lipgloss.NewStyle().Foreground(ColorGray)
)
