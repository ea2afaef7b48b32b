package mode

import "strings"

// Mode identifies one exercise type.
type Mode string

const (
	Conversation Mode = "conversation"
	Roleplay     Mode = "roleplay"
	Repeat       Mode = "repeat"
	SpellBee     Mode = "spellbee"
	WordPuzzle   Mode = "wordpuzzle"
	Grammar      Mode = "grammar"
	Meanings     Mode = "meanings"
)

// chain is the unlock order. Each mode is gated on XP earned in the one
// before it.
var chain = []Mode{Conversation, Roleplay, Repeat, SpellBee, WordPuzzle, Grammar, Meanings}

// Chain returns all modes in unlock order.
func Chain() []Mode {
	out := make([]Mode, len(chain))
	copy(out, chain)
	return out
}

// Parse validates a mode string. Matching is case-insensitive and ignores
// surrounding whitespace; a few legacy spellings are accepted.
func Parse(s string) (Mode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "spelling", "spell-bee", "spell_bee":
		return SpellBee, true
	case "puzzle", "word-puzzle", "word_puzzle", "unscramble":
		return WordPuzzle, true
	case "repetition", "repeat-after-me":
		return Repeat, true
	case "role-play", "role_play":
		return Roleplay, true
	case "meaning", "vocabulary":
		return Meanings, true
	}
	for _, m := range chain {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m.Index() >= 0
}

// Index returns the position of m in the unlock chain, or -1.
func (m Mode) Index() int {
	for i, c := range chain {
		if c == m {
			return i
		}
	}
	return -1
}

// Participation reports whether the mode is graded on taking part rather
// than on matching a reference answer.
func (m Mode) Participation() bool {
	switch m {
	case Conversation, Roleplay, Meanings:
		return true
	default:
		return false
	}
}

// DisplayName returns a child-friendly label for the mode.
func (m Mode) DisplayName() string {
	switch m {
	case Conversation:
		return "Talk Time"
	case Roleplay:
		return "Role Play"
	case Repeat:
		return "Repeat After Me"
	case SpellBee:
		return "Spell Bee"
	case WordPuzzle:
		return "Word Puzzle"
	case Grammar:
		return "Grammar Quiz"
	case Meanings:
		return "Word Meanings"
	default:
		return string(m)
	}
}

// Icon returns the display icon for the mode.
func (m Mode) Icon() string {
	switch m {
	case Conversation:
		return "💬"
	case Roleplay:
		return "🎭"
	case Repeat:
		return "🔁"
	case SpellBee:
		return "🐝"
	case WordPuzzle:
		return "🧩"
	case Grammar:
		return "📘"
	case Meanings:
		return "📖"
	default:
		return "✦"
	}
}
