package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/talkie/internal/keylock"
	"github.com/abhisek/talkie/internal/logger"
	"github.com/abhisek/talkie/internal/store"
	"github.com/abhisek/talkie/internal/streak"
)

// Evaluator decides which badges an updated snapshot newly earns. It must
// not return ids present in owned.
type Evaluator interface {
	Evaluate(owned map[string]bool, snap Snapshot, a *Attempt) []string
}

// Result is the outcome of recording one attempt.
type Result struct {
	Before    Snapshot
	After     Snapshot
	NewBadges []string
}

// Ledger records attempts and serves snapshots. Attempts for the same user
// are serialized; different users never wait on each other.
type Ledger struct {
	store  *store.Store
	badges Evaluator
	locks  keylock.Map
	now    func() time.Time
	loc    *time.Location
	log    *logger.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the time zone that defines calendar days for streaks.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) { l.loc = loc }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// NewLedger creates a Ledger. badges may be nil to skip badge awards.
func NewLedger(s *store.Store, badges Evaluator, opts ...Option) *Ledger {
	l := &Ledger{
		store:  s,
		badges: badges,
		now:    time.Now,
		loc:    time.Local,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With("component", "ledger")
	return l
}

func (l *Ledger) clock() time.Time {
	return l.now().In(l.loc)
}

// CreateUser creates the user with a zeroed ledger.
func (l *Ledger) CreateUser(ctx context.Context, id, name string) (store.User, error) {
	u, err := l.store.CreateUser(ctx, id, name, l.clock())
	if err != nil {
		return store.User{}, err
	}
	l.log.Info("user created", "user", id)
	return u, nil
}

// DeleteUser removes the user, their ledger, attempt log and badges.
func (l *Ledger) DeleteUser(ctx context.Context, id string) error {
	unlock := l.locks.Lock(id)
	defer unlock()
	if err := l.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	l.log.Info("user deleted", "user", id)
	return nil
}

// RecordAttempt appends the attempt to the log and updates every counter,
// the cached streak and badge awards in one transaction. Counters move
// by exactly a.XP and a.Stars, and the mean accuracy stays the exact mean
// of every logged score.
func (l *Ledger) RecordAttempt(ctx context.Context, userID string, a Attempt) (Result, error) {
	if _, err := store.XPColumn(a.Mode); err != nil {
		return Result{}, err
	}
	a.Score = clamp(a.Score, 0, 100)
	a.XP = max(a.XP, 0)
	a.Stars = clamp(a.Stars, 0, 3)

	unlock := l.locks.Lock(userID)
	defer unlock()

	now := l.clock()
	var res Result
	err := l.store.InTx(ctx, func(r *store.Repo) error {
		before, err := r.GetProgress(ctx, userID)
		if err != nil {
			return err
		}
		days, err := r.ActiveDays(ctx, userID)
		if err != nil {
			return err
		}
		res.Before = fromStore(before, streak.Compute(days, now))

		row := store.Attempt{
			UserID:     userID,
			Mode:       a.Mode,
			Difficulty: a.Difficulty,
			Score:      a.Score,
			XPEarned:   a.XP,
			Stars:      a.Stars,
			Day:        streak.Day(now),
			CreatedAt:  now,
		}
		mean := RunningMean(before.AverageAccuracy, before.TotalSessions, a.Score)
		if err := r.ApplyAttempt(ctx, row, mean); err != nil {
			return err
		}

		if days, err = r.ActiveDays(ctx, userID); err != nil {
			return err
		}
		current := streak.Compute(days, now)
		if err := r.SetStreak(ctx, userID, current); err != nil {
			return err
		}

		after, err := r.GetProgress(ctx, userID)
		if err != nil {
			return err
		}
		res.After = fromStore(after, current)

		if l.badges == nil {
			return nil
		}
		awards, err := r.AwardedBadges(ctx, userID)
		if err != nil {
			return err
		}
		owned := make(map[string]bool, len(awards))
		for _, aw := range awards {
			owned[aw.BadgeID] = true
		}
		for _, id := range l.badges.Evaluate(owned, res.After, &a) {
			inserted, err := r.AwardBadge(ctx, userID, id, now)
			if err != nil {
				return err
			}
			if inserted {
				res.NewBadges = append(res.NewBadges, id)
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("record attempt for %s: %w", userID, err)
	}

	l.log.Info("attempt recorded",
		"user", userID,
		"mode", a.Mode,
		"score", a.Score,
		"xp", a.XP,
		"stars", a.Stars,
		"streak", res.After.Streak,
		"new_badges", res.NewBadges,
	)
	return res, nil
}

// Snapshot returns the user's counters with the streak recomputed from the
// attempt log.
func (l *Ledger) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	repo := l.store.Repo()
	p, err := repo.GetProgress(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	days, err := repo.ActiveDays(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	current := streak.Compute(days, l.clock())
	if current != p.Streak {
		if err := repo.SetStreak(ctx, userID, current); err != nil {
			l.log.Warn("refresh cached streak failed", "user", userID, "error", err)
		}
	}
	return fromStore(p, current), nil
}

// Awards returns the badges userID owns.
func (l *Ledger) Awards(ctx context.Context, userID string) ([]store.BadgeAward, error) {
	return l.store.Repo().AwardedBadges(ctx, userID)
}

// Rebuild recomputes the cached counters of userID from the attempt log.
func (l *Ledger) Rebuild(ctx context.Context, userID string) (Snapshot, error) {
	unlock := l.locks.Lock(userID)
	defer unlock()

	now := l.clock()
	var snap Snapshot
	err := l.store.InTx(ctx, func(r *store.Repo) error {
		p, err := r.RebuildProgress(ctx, userID)
		if err != nil {
			return err
		}
		days, err := r.ActiveDays(ctx, userID)
		if err != nil {
			return err
		}
		current := streak.Compute(days, now)
		if err := r.SetStreak(ctx, userID, current); err != nil {
			return err
		}
		snap = fromStore(p, current)
		return nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("rebuild %s: %w", userID, err)
	}
	l.log.Info("progress rebuilt", "user", userID, "sessions", snap.TotalSessions)
	return snap, nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
