package tutor

import (
	"context"

	"github.com/abhisek/talkie/internal/coach"
	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/scoring"
	"github.com/abhisek/talkie/internal/session"
)

// Turn is a coach reply together with what the participation earned.
type Turn struct {
	Reply coach.Reply `json:"reply"`
	Audio string      `json:"audio,omitempty"`
	XP    int         `json:"xp_earned"`
	Delta Delta       `json:"delta"`
}

// Lookup is a word explanation with what the participation earned.
type Lookup struct {
	Meaning coach.Meaning `json:"meaning"`
	Audio   string        `json:"audio,omitempty"`
	XP      int           `json:"xp_earned"`
	Delta   Delta         `json:"delta"`
}

// Talk answers the child in free conversation. The exchange is kept in
// the session transcript so the coach can follow the thread.
func (t *Tutor) Talk(ctx context.Context, userID, sessionID, text string) (Turn, error) {
	if err := t.checkUnlocked(ctx, userID, mode.Conversation); err != nil {
		return Turn{}, err
	}
	snap, err := t.peekSession(ctx, sessionID)
	if err != nil {
		return Turn{}, err
	}
	reply, err := t.coach.Reply(ctx, snap.Transcript, text)
	if err != nil {
		return Turn{}, err
	}
	err = t.withSession(ctx, sessionID, func(st *session.State) error {
		st.AppendTranscript("Child: " + text)
		st.AppendTranscript("Coach: " + reply.Text)
		return nil
	})
	if err != nil {
		return Turn{}, err
	}
	return t.finishTurn(ctx, userID, mode.Conversation, text, reply)
}

// Roleplay answers the child's line in a scene.
func (t *Tutor) Roleplay(ctx context.Context, userID, sessionID, scenario, question, answer string) (Turn, error) {
	if err := t.checkUnlocked(ctx, userID, mode.Roleplay); err != nil {
		return Turn{}, err
	}
	reply, err := t.coach.Roleplay(ctx, scenario, question, answer)
	if err != nil {
		return Turn{}, err
	}
	err = t.withSession(ctx, sessionID, func(st *session.State) error {
		if question != "" {
			st.AppendTranscript("Coach: " + question)
		}
		st.AppendTranscript("Child: " + answer)
		st.AppendTranscript("Coach: " + reply.Text)
		return nil
	})
	if err != nil {
		return Turn{}, err
	}
	return t.finishTurn(ctx, userID, mode.Roleplay, answer, reply)
}

// Meaning explains a word. Unlike the conversation turns it fails with
// coach.ErrUnavailable when no generator can answer, and nothing is
// recorded in that case.
func (t *Tutor) Meaning(ctx context.Context, userID, sessionID, word string) (Lookup, error) {
	if err := t.checkUnlocked(ctx, userID, mode.Meanings); err != nil {
		return Lookup{}, err
	}
	m, err := t.coach.Define(ctx, word)
	if err != nil {
		return Lookup{}, err
	}
	err = t.withSession(ctx, sessionID, func(st *session.State) error {
		st.AppendTranscript("Child: what does " + m.Word + " mean?")
		st.AppendTranscript("Coach: " + m.Meaning)
		return nil
	})
	if err != nil {
		return Lookup{}, err
	}

	res := scoring.Participation(mode.Meanings, m.Word)
	xp := XPFor(mode.Meanings, res)
	delta, err := t.RecordAttempt(ctx, userID, mode.Meanings, mode.Easy, res.Score, xp, res.Stars)
	if err != nil {
		return Lookup{}, err
	}
	return Lookup{
		Meaning: m,
		Audio:   t.speak(ctx, m.Meaning),
		XP:      xp,
		Delta:   delta,
	}, nil
}

func (t *Tutor) finishTurn(ctx context.Context, userID string, m mode.Mode, said string, reply coach.Reply) (Turn, error) {
	res := scoring.Participation(m, said)
	xp := XPFor(m, res)
	delta, err := t.RecordAttempt(ctx, userID, m, mode.Easy, res.Score, xp, res.Stars)
	if err != nil {
		return Turn{}, err
	}
	return Turn{
		Reply: reply,
		Audio: t.speak(ctx, reply.Text),
		XP:    xp,
		Delta: delta,
	}, nil
}
