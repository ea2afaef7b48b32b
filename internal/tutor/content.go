package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/talkie/internal/content"
	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/selector"
	"github.com/abhisek/talkie/internal/session"
)

// Issued is content as shown to the learner. Answers never leave the
// server: puzzles carry only the scrambled word and grammar questions
// only their options.
type Issued struct {
	ID         string           `json:"id"`
	Category   content.Category `json:"category"`
	Difficulty mode.Difficulty  `json:"difficulty"`
	Text       string           `json:"text"`
	Hint       string           `json:"hint,omitempty"`
	Scenario   string           `json:"scenario,omitempty"`
	Options    []string         `json:"options,omitempty"`
	Audio      string           `json:"audio,omitempty"`
	Generated  bool             `json:"generated,omitempty"`
}

// PickContent chooses the next item of a category for the session,
// avoiding items it served recently. Issuing a puzzle or grammar question
// stores its answer key in the session and resets the failure count.
func (t *Tutor) PickContent(ctx context.Context, sessionID string, c content.Category, d mode.Difficulty) (Issued, error) {
	if d == "" {
		d = mode.Easy
	}

	pool := t.bank.Pool(c, d)
	gen, err := t.fresh(ctx, sessionID, c, d, pool)
	if err != nil {
		return Issued{}, err
	}

	var out Issued
	err = t.withSession(ctx, sessionID, func(st *session.State) error {
		h := st.History(c)

		var (
			item      content.Item
			generated bool
		)
		if gen != nil && exhausted(pool, h) {
			item, generated = *gen, true
			h.Push(item.Key())
		} else {
			var ok bool
			if item, ok = selector.Pick(pool, content.Item.Key, h, t.intn); !ok {
				return fmt.Errorf("%w: %s/%s", ErrNoContent, c, d)
			}
		}

		out = Issued{
			ID:         item.ID,
			Category:   c,
			Difficulty: item.Difficulty,
			Text:       item.Text,
			Hint:       item.Hint,
			Scenario:   item.Scenario,
			Generated:  generated,
		}

		switch c {
		case content.Puzzle:
			scrambled := content.Scramble(item.Text, t.intn)
			st.Puzzle = &session.IssuedPuzzle{
				ItemID:     item.ID,
				Word:       item.Text,
				Scrambled:  scrambled,
				Difficulty: item.Difficulty,
			}
			out.Text = scrambled
		case content.Grammar:
			st.Grammar = &session.IssuedGrammar{
				ItemID:      item.ID,
				Answer:      item.Answer,
				Options:     item.Options,
				Difficulty:  item.Difficulty,
				Explanation: item.Explanation,
			}
			out.Options = item.Options
		default:
			st.Issue(c, item.Text)
		}
		return nil
	})
	if err != nil {
		return Issued{}, err
	}

	switch c {
	case content.Sentences, content.Spelling, content.Roleplay:
		out.Audio = t.speak(ctx, out.Text)
	}
	return out, nil
}

// fresh asks the coach for a new sentence once every pooled sentence has
// been served recently. The coach is called without holding the session
// lock, so the caller re-checks the history before using the result. A nil
// item means the pool should be used.
func (t *Tutor) fresh(ctx context.Context, sessionID string, c content.Category, d mode.Difficulty, pool []content.Item) (*content.Item, error) {
	if c != content.Sentences || !t.coach.Available() {
		return nil, nil
	}
	snap, err := t.peekSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !exhausted(pool, snap.History(c)) {
		return nil, nil
	}
	text, err := t.coach.Sentence(ctx, d)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			t.log.Debug("sentence generation failed, using pool", "error", err)
		}
		return nil, nil
	}
	return &content.Item{
		ID:         "gen-" + uuid.NewString(),
		Category:   c,
		Difficulty: d,
		Text:       text,
	}, nil
}

// exhausted reports whether every pooled item was served recently.
func exhausted(pool []content.Item, h *selector.History) bool {
	for _, it := range pool {
		if !h.Contains(it.Key()) {
			return false
		}
	}
	return true
}
