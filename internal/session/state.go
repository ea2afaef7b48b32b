// Package session holds per-session learner state: anti-repetition
// histories, the answer keys of issued puzzles and grammar questions, and
// the rolling coach transcript. State never crosses sessions.
package session

import (
	"errors"

	"github.com/abhisek/talkie/internal/content"
	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/selector"
)

// ErrExpired is returned when an answer is checked but the session holds
// no key for it, typically after the session expired. The caller should
// issue new content.
var ErrExpired = errors.New("session: no issued content to check, request new content")

// MaxTranscript is the number of trailing characters of coach dialogue kept
// as conversational context.
const MaxTranscript = 1200

// IssuedPuzzle is the scrambled word currently shown to the learner.
type IssuedPuzzle struct {
	ItemID     string          `json:"item_id"`
	Word       string          `json:"word"`
	Scrambled  string          `json:"scrambled"`
	Difficulty mode.Difficulty `json:"difficulty"`
	Failures   int             `json:"failures"`
}

// IssuedGrammar is the answer key of the grammar question currently shown.
type IssuedGrammar struct {
	ItemID      string          `json:"item_id"`
	Answer      int             `json:"answer"`
	Options     []string        `json:"options"`
	Difficulty  mode.Difficulty `json:"difficulty"`
	Explanation string          `json:"explanation"`
}

// State is everything remembered for one session.
type State struct {
	ID         string                                 `json:"id"`
	Histories  map[content.Category]*selector.History `json:"histories"`
	Puzzle     *IssuedPuzzle                          `json:"puzzle,omitempty"`
	Grammar    *IssuedGrammar                         `json:"grammar,omitempty"`
	LastIssued map[content.Category]string            `json:"last_issued,omitempty"`
	Transcript string                                 `json:"transcript,omitempty"`
}

// New returns an empty state for id.
func New(id string) *State {
	return &State{ID: id, Histories: make(map[content.Category]*selector.History)}
}

// History returns the history for a category, creating it on first use.
func (s *State) History(c content.Category) *selector.History {
	if s.Histories == nil {
		s.Histories = make(map[content.Category]*selector.History)
	}
	h, ok := s.Histories[c]
	if !ok {
		h = selector.NewHistory(selector.DefaultMaxHistory)
		s.Histories[c] = h
	}
	return h
}

// Issue remembers the text last shown for a category so an attempt that
// omits its reference can be graded against it.
func (s *State) Issue(c content.Category, text string) {
	if s.LastIssued == nil {
		s.LastIssued = make(map[content.Category]string)
	}
	s.LastIssued[c] = text
}

// AppendTranscript adds a line and keeps only the last MaxTranscript
// characters.
func (s *State) AppendTranscript(line string) {
	if s.Transcript != "" {
		s.Transcript += "\n"
	}
	s.Transcript += line
	if r := []rune(s.Transcript); len(r) > MaxTranscript {
		s.Transcript = string(r[len(r)-MaxTranscript:])
	}
}
