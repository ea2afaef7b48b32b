// Package suggest turns a learner's history into a short, ranked list of
// what to practice next. It works from numbers only and never calls out to
// a text generator.
package suggest

import (
	"fmt"
	"sort"

	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/progress"
	"github.com/abhisek/talkie/internal/store"
	"github.com/abhisek/talkie/internal/unlock"
)

// MaxSuggestions caps the list length.
const MaxSuggestions = 6

// LowScore is the score under which an attempt is worth retrying.
const LowScore = 70

// RecentLowLimit is how many recent low attempts are considered.
const RecentLowLimit = 10

// Type identifies the rule that produced a suggestion.
type Type string

const (
	TypeWelcome      Type = "welcome"
	TypeStartStreak  Type = "start_streak"
	TypeKeepGoing    Type = "keep_going"
	TypeStreakPraise Type = "streak_praise"
	TypeStruggling   Type = "struggling"
	TypeImproving    Type = "improving"
	TypeStrong       Type = "strong"
	TypeExplore      Type = "explore"
	TypeRetry        Type = "retry"
	TypeAlmostThere  Type = "almost_there"
	TypeStars        Type = "collect_stars"
)

// Priorities, highest first.
const (
	PriorityStartStreak  = 100
	PriorityWelcome      = 100
	PriorityStruggling   = 90
	PriorityKeepGoing    = 80
	PriorityRetry        = 70
	PriorityImproving    = 60
	PriorityAlmostThere  = 55
	PriorityExplore      = 50
	PriorityStars        = 45
	PriorityStrong       = 30
	PriorityStreakPraise = 20
)

// XPMilestones are the totals the "almost there" nudge counts toward.
var XPMilestones = []int{25, 50, 100, 250, 500}

// Suggestion is one recommendation.
type Suggestion struct {
	Type     Type      `json:"type"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Priority int       `json:"priority"`
	Mode     mode.Mode `json:"mode,omitempty"`
}

// Input is everything the rules look at.
type Input struct {
	Snapshot  progress.Snapshot
	Stats     []store.ModeStat
	RecentLow []store.Attempt // newest first
}

// Synthesize applies every rule and returns at most MaxSuggestions,
// highest priority first. Ties keep rule order.
func Synthesize(in Input) []Suggestion {
	attempted := 0
	for _, st := range in.Stats {
		attempted += st.Attempts
	}
	if attempted == 0 && in.Snapshot.TotalSessions == 0 {
		return []Suggestion{{
			Type:     TypeWelcome,
			Title:    "Welcome!",
			Message:  "Start with Talk Time and tell me about your day.",
			Priority: PriorityWelcome,
			Mode:     mode.Conversation,
		}}
	}

	var out []Suggestion
	out = append(out, streakRules(in.Snapshot.Streak)...)
	out = append(out, performanceRules(in.Stats)...)
	out = append(out, exploreRules(in.Snapshot, in.Stats)...)
	out = append(out, retryRules(in.RecentLow)...)
	if s, ok := almostThere(in.Snapshot.XPTotal); ok {
		out = append(out, s)
	}
	if in.Snapshot.TotalStars < 5 && in.Snapshot.TotalSessions > 3 {
		out = append(out, Suggestion{
			Type:     TypeStars,
			Title:    "Collect more stars",
			Message:  "Take your time and aim for stars. Slow and clear wins!",
			Priority: PriorityStars,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

func streakRules(streak int) []Suggestion {
	switch {
	case streak == 0:
		return []Suggestion{{
			Type:     TypeStartStreak,
			Title:    "Start a streak",
			Message:  "Practice today to start a new streak!",
			Priority: PriorityStartStreak,
		}}
	case streak <= 2:
		return []Suggestion{{
			Type:     TypeKeepGoing,
			Title:    "Keep it going",
			Message:  fmt.Sprintf("You're on a %d-day streak. Come back tomorrow to make it longer!", streak),
			Priority: PriorityKeepGoing,
		}}
	case streak >= 7:
		return []Suggestion{{
			Type:     TypeStreakPraise,
			Title:    "Amazing streak",
			Message:  fmt.Sprintf("%d days in a row. You're a practice champion!", streak),
			Priority: PriorityStreakPraise,
		}}
	}
	return nil
}

func performanceRules(stats []store.ModeStat) []Suggestion {
	var out []Suggestion
	var strong []store.ModeStat
	for _, st := range stats {
		if st.Attempts == 0 {
			continue
		}
		name := st.Mode.DisplayName()
		switch {
		case st.MeanScore < 60:
			out = append(out, Suggestion{
				Type:     TypeStruggling,
				Title:    "Practice " + name,
				Message:  fmt.Sprintf("%s is tricky right now. Try an easy one to warm up.", name),
				Priority: PriorityStruggling,
				Mode:     st.Mode,
			})
		case st.MeanScore < 75:
			out = append(out, Suggestion{
				Type:     TypeImproving,
				Title:    name + " is improving",
				Message:  fmt.Sprintf("You're getting better at %s. A little more practice!", name),
				Priority: PriorityImproving,
				Mode:     st.Mode,
			})
		default:
			strong = append(strong, st)
		}
	}

	sort.SliceStable(strong, func(i, j int) bool { return strong[i].MeanScore > strong[j].MeanScore })
	if len(strong) > 2 {
		strong = strong[:2]
	}
	for _, st := range strong {
		name := st.Mode.DisplayName()
		out = append(out, Suggestion{
			Type:     TypeStrong,
			Title:    "Great at " + name,
			Message:  fmt.Sprintf("You average %.0f in %s. Try a harder level!", st.MeanScore, name),
			Priority: PriorityStrong,
			Mode:     st.Mode,
		})
	}
	return out
}

func exploreRules(snap progress.Snapshot, stats []store.ModeStat) []Suggestion {
	tried := make(map[mode.Mode]bool, len(stats))
	for _, st := range stats {
		if st.Attempts > 0 {
			tried[st.Mode] = true
		}
	}
	var out []Suggestion
	for _, m := range unlock.Unlocked(snap) {
		if tried[m] {
			continue
		}
		out = append(out, Suggestion{
			Type:     TypeExplore,
			Title:    "Try " + m.DisplayName(),
			Message:  fmt.Sprintf("%s %s is open. Give it a go!", m.Icon(), m.DisplayName()),
			Priority: PriorityExplore,
			Mode:     m,
		})
	}
	return out
}

func retryRules(recent []store.Attempt) []Suggestion {
	if len(recent) > 3 {
		recent = recent[:3]
	}
	out := make([]Suggestion, 0, len(recent))
	for _, a := range recent {
		name := a.Mode.DisplayName()
		out = append(out, Suggestion{
			Type:     TypeRetry,
			Title:    "Try " + name + " again",
			Message:  fmt.Sprintf("You scored %d last time. You can beat it!", a.Score),
			Priority: PriorityRetry,
			Mode:     a.Mode,
		})
	}
	return out
}

func almostThere(xp int) (Suggestion, bool) {
	for _, m := range XPMilestones {
		if xp < m {
			return Suggestion{
				Type:     TypeAlmostThere,
				Title:    "Almost there",
				Message:  fmt.Sprintf("Only %d XP to reach %d XP!", m-xp, m),
				Priority: PriorityAlmostThere,
			}, true
		}
	}
	return Suggestion{}, false
}
