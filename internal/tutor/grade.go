package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/talkie/internal/content"
	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/scoring"
	"github.com/abhisek/talkie/internal/session"
)

// Attempt is one answer as submitted by the learner.
type Attempt struct {
	Mode       mode.Mode
	Difficulty mode.Difficulty
	Submission string
	// Reference is the text to compare against for repeat and spelling.
	// When empty the text last issued in the session is used.
	Reference string
	// Choice is the picked option index for grammar questions.
	Choice int
}

// XP awarded per attempt.
const (
	BaseXP          = 5
	XPPerStar       = 5
	ParticipationXP = 10
)

// XPFor applies the award policy: graded modes earn BaseXP plus XPPerStar
// per star when they score anything, participation modes earn a flat
// ParticipationXP for a real answer.
func XPFor(m mode.Mode, r scoring.Result) int {
	if r.Score <= 0 {
		return 0
	}
	if m.Participation() {
		return ParticipationXP
	}
	return BaseXP + XPPerStar*r.Stars
}

// GradeAttempt scores a without recording it. Puzzle and grammar answers
// are checked against the key issued in the session; a correct answer
// clears the key and a wrong one counts a failure. A missing key yields
// session.ErrExpired.
func (t *Tutor) GradeAttempt(ctx context.Context, sessionID string, a Attempt) (scoring.Result, error) {
	res, _, err := t.grade(ctx, sessionID, a)
	return res, err
}

// grade also reports the difficulty to record: the issued one for keyed
// modes, the submitted one otherwise.
func (t *Tutor) grade(ctx context.Context, sessionID string, a Attempt) (scoring.Result, mode.Difficulty, error) {
	if !a.Mode.Valid() {
		return scoring.Result{}, "", fmt.Errorf("%w: %q", ErrUnknownMode, a.Mode)
	}
	if a.Difficulty == "" {
		a.Difficulty = mode.Easy
	}

	if a.Mode.Participation() {
		return scoring.Participation(a.Mode, a.Submission), a.Difficulty, nil
	}

	var (
		res  scoring.Result
		diff = a.Difficulty
	)
	err := t.withSession(ctx, sessionID, func(st *session.State) error {
		var err error
		switch a.Mode {
		case mode.Repeat:
			ref := reference(st, a.Reference, content.Sentences)
			if ref == "" {
				return session.ErrExpired
			}
			res = scoring.Repeat(a.Submission, ref)

		case mode.SpellBee:
			ref := reference(st, a.Reference, content.Spelling)
			if ref == "" {
				return session.ErrExpired
			}
			res = scoring.Spelling(a.Submission, ref)

		case mode.WordPuzzle:
			if st.Puzzle == nil {
				return session.ErrExpired
			}
			diff = st.Puzzle.Difficulty
			if res, err = scoring.Puzzle(a.Submission, st.Puzzle.Word, st.Puzzle.Failures); err != nil {
				return err
			}
			if res.Correct {
				st.Puzzle = nil
			} else {
				st.Puzzle.Failures++
			}

		case mode.Grammar:
			if st.Grammar == nil {
				return session.ErrExpired
			}
			key := st.Grammar
			diff = key.Difficulty
			res, err = scoring.Choice(a.Choice, &scoring.ChoiceKey{
				Answer:      key.Answer,
				Options:     key.Options,
				Difficulty:  key.Difficulty,
				Explanation: key.Explanation,
			})
			if err != nil {
				return err
			}
			if res.Correct {
				st.Grammar = nil
			}
		}
		return nil
	})
	if errors.Is(err, scoring.ErrExpired) {
		err = session.ErrExpired
	}
	if err != nil {
		return scoring.Result{}, "", err
	}
	return res, diff, nil
}

func reference(st *session.State, given string, c content.Category) string {
	if given != "" {
		return given
	}
	return st.LastIssued[c]
}
