// Package theme holds the colors and styles of terminal output.
package theme

import "charm.land/lipgloss/v2"

// Crayon-box palette. Every color reads on both dark and light terminals.
var (
	Grape  = lipgloss.Color("#7C3AED")
	Sky    = lipgloss.Color("#0EA5E9")
	Sun    = lipgloss.Color("#F59E0B")
	Leaf   = lipgloss.Color("#16A34A")
	Berry  = lipgloss.Color("#E11D48")
	Chalk  = lipgloss.Color("#F1F5F9")
	Pebble = lipgloss.Color("#94A3B8")
	Slate  = lipgloss.Color("#334155")
)

var (
	Title   = lipgloss.NewStyle().Bold(true).Foreground(Grape)
	Section = lipgloss.NewStyle().Bold(true).Foreground(Sky).MarginTop(1)
	Body    = lipgloss.NewStyle().Foreground(Chalk)
	Hint    = lipgloss.NewStyle().Italic(true).Foreground(Pebble)

	// Card frames the summary block of a report.
	Card = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Slate).Padding(0, 1)

	Earned  = lipgloss.NewStyle().Bold(true).Foreground(Leaf)
	Locked  = lipgloss.NewStyle().Foreground(Pebble)
	Warning = lipgloss.NewStyle().Bold(true).Foreground(Sun)
	Failure = lipgloss.NewStyle().Bold(true).Foreground(Berry)

	ProgressFilled = lipgloss.NewStyle().Background(Sky)
	ProgressEmpty  = lipgloss.NewStyle().Background(Slate)

	TableHeader = lipgloss.NewStyle().Bold(true).Foreground(Sky).Padding(0, 1)
	TableCell   = lipgloss.NewStyle().Foreground(Chalk).Padding(0, 1)
)
