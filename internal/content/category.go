// Package content holds the practice material served to learners: example
// sentences, spelling and puzzle words, role-play prompts, grammar
// questions and vocabulary words, grouped by category and difficulty.
package content

import (
	"strings"

	"github.com/abhisek/talkie/internal/mode"
)

// Category is a pool of practice items.
type Category string

const (
	Sentences Category = "sentences"
	Spelling  Category = "spelling"
	Puzzle    Category = "puzzle"
	Roleplay  Category = "roleplay"
	Grammar   Category = "grammar"
	Meanings  Category = "meanings"
)

// AllCategories lists every category.
func AllCategories() []Category {
	return []Category{Sentences, Spelling, Puzzle, Roleplay, Grammar, Meanings}
}

// ParseCategory normalizes s. Unknown values fall back to Sentences, the
// general-purpose pool.
func ParseCategory(s string) Category {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "sentence", "general", "repeat":
		return Sentences
	case "spell", "spellbee", "words":
		return Spelling
	case "wordpuzzle", "unscramble":
		return Puzzle
	case "role-play", "questions":
		return Roleplay
	case "meaning", "vocabulary":
		return Meanings
	}
	for _, c := range AllCategories() {
		if string(c) == s {
			return c
		}
	}
	return Sentences
}

// CategoryFor returns the pool a mode draws from. Free conversation has no
// pool.
func CategoryFor(m mode.Mode) (Category, bool) {
	switch m {
	case mode.Roleplay:
		return Roleplay, true
	case mode.Repeat:
		return Sentences, true
	case mode.SpellBee:
		return Spelling, true
	case mode.WordPuzzle:
		return Puzzle, true
	case mode.Grammar:
		return Grammar, true
	case mode.Meanings:
		return Meanings, true
	default:
		return "", false
	}
}
