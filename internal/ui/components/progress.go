package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/talkie/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for value out of max.
type ProgressBar struct {
	Label     string
	Value     int
	Max       int
	ShowValue bool
	Width     int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, value, max int, showValue bool, width int) ProgressBar {
	return ProgressBar{
		Label:     label,
		Value:     value,
		Max:       max,
		ShowValue: showValue,
		Width:     width,
	}
}

// Fraction is Value/Max clamped to [0, 1].
func (p ProgressBar) Fraction() float64 {
	if p.Max <= 0 {
		return 1
	}
	f := float64(p.Value) / float64(p.Max)
	return min(max(f, 0), 1)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += theme.Body.Render(p.Label) + "  "
	}

	counter := ""
	if p.ShowValue {
		counter = fmt.Sprintf("  %d/%d", min(p.Value, p.Max), p.Max)
	}

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(counter)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Fraction())
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	if p.ShowValue {
		result += theme.Hint.Render(counter)
	}
	return result
}
