// Package report renders learner progress for the terminal.
package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/talkie/internal/badges"
	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/suggest"
	"github.com/abhisek/talkie/internal/tutor"
	"github.com/abhisek/talkie/internal/ui/components"
	"github.com/abhisek/talkie/internal/ui/theme"
	"github.com/abhisek/talkie/internal/unlock"
)

// Width is the default render width.
const Width = 60

// Progress renders a user's progress page.
func Progress(name string, v tutor.View, suggestions []suggest.Suggestion) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render(fmt.Sprintf("%s's progress", name)))
	b.WriteString("\n")
	b.WriteString(theme.Card.Render(summary(v)))
	b.WriteString("\n")

	b.WriteString(theme.Section.Render("Modes"))
	b.WriteString("\n")
	for _, m := range mode.Chain() {
		b.WriteString(modeLine(v, m))
		b.WriteString("\n")
	}
	if v.Next != nil {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%d more XP in %s opens %s.",
			v.Next.XPNeeded, v.Next.BlockingMode.DisplayName(), v.Next.Feature.DisplayName())))
		b.WriteString("\n")
	}

	b.WriteString(Badges(v.Badges))

	if len(suggestions) > 0 {
		b.WriteString(theme.Section.Render("Try next"))
		b.WriteString("\n")
		for _, s := range suggestions {
			fmt.Fprintf(&b, "%s %s\n", theme.Warning.Render(s.Title), theme.Body.Render(s.Message))
		}
	}
	return b.String()
}

// Badges renders earned badges first, then the locked ones dimmed.
func Badges(statuses []badges.Status) string {
	var b strings.Builder
	earned := 0
	for _, s := range statuses {
		if s.Earned {
			earned++
		}
	}
	b.WriteString(theme.Section.Render(fmt.Sprintf("Badges %d/%d", earned, len(statuses))))
	b.WriteString("\n")

	sorted := slices.Clone(statuses)
	slices.SortStableFunc(sorted, func(a, c badges.Status) int {
		switch {
		case a.Earned == c.Earned:
			return 0
		case a.Earned:
			return -1
		default:
			return 1
		}
	})
	for _, s := range sorted {
		if s.Earned {
			fmt.Fprintf(&b, "%s %s  %s\n", s.Icon, theme.Earned.Render(s.Name), theme.Hint.Render(s.Description))
		} else {
			fmt.Fprintf(&b, "%s\n", theme.Locked.Render("🔒 "+s.Name+"  "+s.Description))
		}
	}
	return b.String()
}

func summary(v tutor.View) string {
	return strings.Join([]string{
		fmt.Sprintf("XP %d", v.XPTotal),
		fmt.Sprintf("⭐ %d", v.TotalStars),
		fmt.Sprintf("🔥 %d day streak", v.Streak),
		fmt.Sprintf("%d attempts", v.TotalSessions),
		fmt.Sprintf("%.0f%% accuracy", v.AverageAccuracy),
	}, "   ")
}

func modeLine(v tutor.View, m mode.Mode) string {
	label := fmt.Sprintf("%s %-18s", m.Icon(), m.DisplayName())
	if !slices.Contains(v.Unlocked, m) {
		return theme.Locked.Render(fmt.Sprintf("🔒 %-18s locked", m.DisplayName()))
	}
	// Bars fill toward the XP that opens the next mode; the last mode has
	// nothing to open and shows its raw XP.
	if m.Index() == len(mode.Chain())-1 {
		return theme.Body.Render(label) + theme.Hint.Render(fmt.Sprintf("  %d XP", v.XP(m)))
	}
	return components.NewProgressBar(label, v.XP(m), unlock.Threshold, true, Width).View()
}
