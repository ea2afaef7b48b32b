package badges

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/talkie/internal/progress"
	"github.com/abhisek/talkie/internal/store"
)

// Rules is an ordered badge catalog.
type Rules []Rule

// Evaluate returns the ids of badges whose predicate holds and that are not
// in owned. It has no side effects.
func (r Rules) Evaluate(owned map[string]bool, snap progress.Snapshot, a *progress.Attempt) []string {
	in := Input{Snapshot: snap, Attempt: a}
	var out []string
	for _, rule := range r {
		if owned[rule.ID] {
			continue
		}
		if rule.Earned(in) {
			out = append(out, rule.ID)
		}
	}
	return out
}

// Find returns the definition with id.
func (r Rules) Find(id string) (Definition, bool) {
	for _, rule := range r {
		if rule.ID == id {
			return rule.Definition, true
		}
	}
	return Definition{}, false
}

// Definitions returns the catalog without predicates.
func (r Rules) Definitions() []Definition {
	out := make([]Definition, len(r))
	for i, rule := range r {
		out[i] = rule.Definition
	}
	return out
}

// AwardLister loads the badges a user already owns.
type AwardLister interface {
	AwardedBadges(ctx context.Context, userID string) ([]store.BadgeAward, error)
}

// Engine evaluates rules against a user's stored awards.
type Engine struct {
	rules  Rules
	awards AwardLister
}

// NewEngine creates an Engine.
func NewEngine(rules Rules, awards AwardLister) *Engine {
	return &Engine{rules: rules, awards: awards}
}

// Rules returns the engine's catalog.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Evaluate returns badges newly earned by userID given snap and the
// optional attempt. Nothing is persisted.
func (e *Engine) Evaluate(ctx context.Context, userID string, snap progress.Snapshot, a *progress.Attempt) ([]string, error) {
	owned, err := Owned(ctx, e.awards, userID)
	if err != nil {
		return nil, err
	}
	return e.rules.Evaluate(owned, snap, a), nil
}

// Owned loads the set of badge ids userID holds.
func Owned(ctx context.Context, awards AwardLister, userID string) (map[string]bool, error) {
	list, err := awards.AwardedBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load badges for %s: %w", userID, err)
	}
	owned := make(map[string]bool, len(list))
	for _, a := range list {
		owned[a.BadgeID] = true
	}
	return owned, nil
}

// Status is a catalog entry annotated with the user's award.
type Status struct {
	Definition
	Earned    bool       `json:"earned"`
	AwardedAt *time.Time `json:"awarded_at,omitempty"`
}

// Statuses lists the whole catalog with earned flags.
func (r Rules) Statuses(awards []store.BadgeAward) []Status {
	at := make(map[string]time.Time, len(awards))
	for _, a := range awards {
		at[a.BadgeID] = a.AwardedAt
	}
	out := make([]Status, len(r))
	for i, rule := range r {
		out[i] = Status{Definition: rule.Definition}
		if t, ok := at[rule.ID]; ok {
			out[i].Earned = true
			out[i].AwardedAt = &t
		}
	}
	return out
}
