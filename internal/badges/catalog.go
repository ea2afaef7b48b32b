// Package badges defines the achievement catalog and evaluates which
// badges a learner has newly earned.
package badges

import (
	"fmt"

	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/progress"
)

// Category groups badges for display.
type Category string

const (
	CategoryMilestone Category = "milestone"
	CategoryMode      Category = "mode"
	CategoryStars     Category = "stars"
	CategoryStreak    Category = "streak"
	CategoryPerfect   Category = "perfect"
	CategoryChallenge Category = "challenge"
	CategorySpecial   Category = "special"
)

// Definition is the static description of a badge.
type Definition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
}

// Input is what a predicate sees: the ledger after the attempt, and the
// attempt itself when there is one.
type Input struct {
	Snapshot progress.Snapshot
	Attempt  *progress.Attempt
}

// Rule pairs a badge with the predicate that earns it.
type Rule struct {
	Definition
	Earned func(in Input) bool
}

func xpAtLeast(n int) func(Input) bool {
	return func(in Input) bool { return in.Snapshot.XPTotal >= n }
}

func modeXPAtLeast(m mode.Mode, n int) func(Input) bool {
	return func(in Input) bool { return in.Snapshot.XP(m) >= n }
}

func starsAtLeast(n int) func(Input) bool {
	return func(in Input) bool { return in.Snapshot.TotalStars >= n }
}

func streakAtLeast(n int) func(Input) bool {
	return func(in Input) bool { return in.Snapshot.Streak >= n }
}

func perfectIn(m mode.Mode) func(Input) bool {
	return func(in Input) bool {
		return in.Attempt != nil && in.Attempt.Mode == m && in.Attempt.Score == 100
	}
}

func completedAt(m mode.Mode, d mode.Difficulty) func(Input) bool {
	return func(in Input) bool {
		a := in.Attempt
		return a != nil && a.Mode == m && a.Difficulty == d && a.Stars >= 1
	}
}

func allRounder(in Input) bool {
	for _, m := range mode.Chain() {
		if in.Snapshot.XP(m) <= 0 {
			return false
		}
	}
	return true
}

// ModeMasteryXP is the per-mode XP that earns that mode's badge.
const ModeMasteryXP = 50

var modeBadgeNames = map[mode.Mode]string{
	mode.Conversation: "Chatterbox",
	mode.Roleplay:     "Little Actor",
	mode.Repeat:       "Echo Master",
	mode.SpellBee:     "Spelling Bee",
	mode.WordPuzzle:   "Puzzle Solver",
	mode.Grammar:      "Grammar Guru",
	mode.Meanings:     "Word Wizard",
}

// Default returns the full catalog.
func Default() Rules {
	rules := Rules{
		{Definition{"first_steps", "First Steps", CategoryMilestone, "Earn your first XP.", "👣"}, xpAtLeast(1)},
		{Definition{"xp_25", "Getting Started", CategoryMilestone, "Earn 25 XP.", "🌱"}, xpAtLeast(25)},
		{Definition{"xp_50", "On a Roll", CategoryMilestone, "Earn 50 XP.", "🎯"}, xpAtLeast(50)},
		{Definition{"xp_100", "Century", CategoryMilestone, "Earn 100 XP.", "💯"}, xpAtLeast(100)},
		{Definition{"xp_250", "High Flyer", CategoryMilestone, "Earn 250 XP.", "🚀"}, xpAtLeast(250)},
		{Definition{"xp_500", "Superstar", CategoryMilestone, "Earn 500 XP.", "🌟"}, xpAtLeast(500)},
	}

	for _, m := range mode.Chain() {
		rules = append(rules, Rule{
			Definition: Definition{
				ID:          "mode_" + string(m),
				Name:        modeBadgeNames[m],
				Category:    CategoryMode,
				Description: fmt.Sprintf("Earn %d XP in %s.", ModeMasteryXP, m.DisplayName()),
				Icon:        m.Icon(),
			},
			Earned: modeXPAtLeast(m, ModeMasteryXP),
		})
	}

	rules = append(rules,
		Rule{Definition{"stars_5", "Star Collector", CategoryStars, "Collect 5 stars.", "⭐"}, starsAtLeast(5)},
		Rule{Definition{"stars_15", "Star Gazer", CategoryStars, "Collect 15 stars.", "✨"}, starsAtLeast(15)},
		Rule{Definition{"stars_30", "Constellation", CategoryStars, "Collect 30 stars.", "🌌"}, starsAtLeast(30)},
		Rule{Definition{"streak_3", "Three in a Row", CategoryStreak, "Practice 3 days in a row.", "🔥"}, streakAtLeast(3)},
		Rule{Definition{"streak_7", "Week Warrior", CategoryStreak, "Practice 7 days in a row.", "🏆"}, streakAtLeast(7)},
		Rule{Definition{"perfect_repeat", "Crystal Clear", CategoryPerfect, "Score 100 in Repeat After Me.", "🔊"}, perfectIn(mode.Repeat)},
		Rule{Definition{"perfect_spellbee", "Perfect Speller", CategoryPerfect, "Score 100 in Spell Bee.", "🐝"}, perfectIn(mode.SpellBee)},
		Rule{Definition{"perfect_wordpuzzle", "Puzzle Pro", CategoryPerfect, "Solve a word puzzle perfectly.", "🧩"}, perfectIn(mode.WordPuzzle)},
		Rule{Definition{"perfect_grammar", "Grammar Star", CategoryPerfect, "Answer a grammar question perfectly.", "📘"}, perfectIn(mode.Grammar)},
	)

	for _, m := range []mode.Mode{mode.Repeat, mode.SpellBee, mode.Grammar} {
		for _, d := range []mode.Difficulty{mode.Medium, mode.Hard} {
			name := "Brave " + m.DisplayName()
			icon := "💪"
			if d == mode.Hard {
				name = "Fearless " + m.DisplayName()
				icon = "🦁"
			}
			rules = append(rules, Rule{
				Definition: Definition{
					ID:          fmt.Sprintf("%s_%s", d, m),
					Name:        name,
					Category:    CategoryChallenge,
					Description: fmt.Sprintf("Earn a star on a %s %s exercise.", d, m.DisplayName()),
					Icon:        icon,
				},
				Earned: completedAt(m, d),
			})
		}
	}

	return append(rules,
		Rule{Definition{"all_rounder", "All-Rounder", CategorySpecial, "Earn XP in every activity.", "🎨"}, allRounder},
		Rule{Definition{"dedicated", "Dedicated Learner", CategorySpecial, "Complete 50 practice sessions.", "📚"}, func(in Input) bool {
			return in.Snapshot.TotalSessions >= 50
		}},
	)
}
