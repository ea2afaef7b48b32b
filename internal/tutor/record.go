package tutor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/abhisek/talkie/internal/badges"
	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/progress"
	"github.com/abhisek/talkie/internal/scoring"
	"github.com/abhisek/talkie/internal/suggest"
	"github.com/abhisek/talkie/internal/unlock"
)

// Delta is what one recorded attempt changed.
type Delta struct {
	Snapshot      progress.Snapshot   `json:"progress"`
	NewlyUnlocked []mode.Mode         `json:"newly_unlocked"`
	NewBadges     []badges.Definition `json:"new_badges"`
}

// Outcome is a graded and recorded attempt.
type Outcome struct {
	Result scoring.Result `json:"result"`
	XP     int            `json:"xp_earned"`
	Delta  Delta          `json:"delta"`
}

// View is the progress page of a user.
type View struct {
	progress.Snapshot
	Unlocked []mode.Mode     `json:"unlocked"`
	Next     *unlock.Next    `json:"next_unlock"`
	Badges   []badges.Status `json:"badges"`
}

// Submit grades a, checks that its mode is unlocked, awards XP and records
// it.
func (t *Tutor) Submit(ctx context.Context, userID, sessionID string, a Attempt) (Outcome, error) {
	if err := t.checkUnlocked(ctx, userID, a.Mode); err != nil {
		return Outcome{}, err
	}
	res, diff, err := t.grade(ctx, sessionID, a)
	if err != nil {
		return Outcome{}, err
	}
	xp := XPFor(a.Mode, res)
	delta, err := t.RecordAttempt(ctx, userID, a.Mode, diff, res.Score, xp, res.Stars)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Result: res, XP: xp, Delta: delta}, nil
}

func (t *Tutor) checkUnlocked(ctx context.Context, userID string, m mode.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
	snap, err := t.ledger.Snapshot(ctx, userID)
	if err != nil {
		return err
	}
	if !unlock.IsUnlocked(snap, m) {
		return fmt.Errorf("%w: %s", ErrLocked, m)
	}
	return nil
}

// RecordAttempt books an already graded attempt and reports the modes and
// badges it unlocked.
func (t *Tutor) RecordAttempt(ctx context.Context, userID string, m mode.Mode, d mode.Difficulty, score, xp, stars int) (Delta, error) {
	ctx, span := otel.Tracer("talkie/tutor").Start(ctx, "tutor.RecordAttempt")
	defer span.End()
	span.SetAttributes(
		attribute.String("mode", string(m)),
		attribute.String("difficulty", string(d)),
		attribute.Int("score", score),
		attribute.Int("xp", xp),
	)

	res, err := t.ledger.RecordAttempt(ctx, userID, progress.Attempt{
		Mode:       m,
		Difficulty: d,
		Score:      score,
		XP:         xp,
		Stars:      stars,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record attempt")
		return Delta{}, err
	}

	delta := Delta{
		Snapshot:      res.After,
		NewlyUnlocked: unlock.NewlyUnlocked(res.Before, res.After),
	}
	for _, id := range res.NewBadges {
		if def, ok := t.rules.Find(id); ok {
			delta.NewBadges = append(delta.NewBadges, def)
		}
	}
	span.SetAttributes(attribute.Int("new_badges", len(delta.NewBadges)))
	if len(delta.NewlyUnlocked) > 0 {
		t.log.Info("modes unlocked", "user", userID, "modes", delta.NewlyUnlocked)
	}
	return delta, nil
}

// ProgressSnapshot returns the user's progress with unlocks and the full
// badge catalog.
func (t *Tutor) ProgressSnapshot(ctx context.Context, userID string) (View, error) {
	snap, err := t.ledger.Snapshot(ctx, userID)
	if err != nil {
		return View{}, err
	}
	awards, err := t.ledger.Awards(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return View{
		Snapshot: snap,
		Unlocked: unlock.Unlocked(snap),
		Next:     unlock.NextUnlock(snap),
		Badges:   t.rules.Statuses(awards),
	}, nil
}

// Suggestions returns what the user should practice next.
func (t *Tutor) Suggestions(ctx context.Context, userID string) ([]suggest.Suggestion, error) {
	return t.suggest.Suggestions(ctx, userID)
}
