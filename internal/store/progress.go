package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/talkie/internal/mode"
)

// GetProgress returns the progress row for userID, or ErrNotFound.
func (r *Repo) GetProgress(ctx context.Context, userID string) (Progress, error) {
	t := r.b.Table(progressTableName)
	cols := make([]string, len(ProgressColumns))
	for i, c := range ProgressColumns {
		cols[i] = t.C(c.Name)
	}
	sel := r.b.Select(cols...).From(t).Where(entsql.EQ(t.C("user_id"), userID))

	p := Progress{ModeXP: make(map[mode.Mode]int)}
	chain := mode.Chain()
	modeXP := make([]int, len(chain))
	var lastActive sql.NullTime

	dest := []any{&p.UserID, &p.XPTotal}
	for i := range modeXP {
		dest = append(dest, &modeXP[i])
	}
	dest = append(dest, &p.TotalStars, &p.TotalSessions, &p.AverageAccuracy, &p.Streak, &lastActive)

	err := r.queryRow(ctx, sel).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return Progress{}, fmt.Errorf("progress for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return Progress{}, fmt.Errorf("get progress %s: %w", userID, err)
	}
	for i, m := range chain {
		p.ModeXP[m] = modeXP[i]
	}
	if lastActive.Valid {
		p.LastActive = lastActive.Time
	}
	return p, nil
}

// ApplyAttempt appends the attempt to the log and folds it into the
// counters: XP total and per mode, stars, session count, running mean and
// last activity. Counters are incremented in SQL. Call it inside
// Store.InTx so the log and the counters move together.
func (r *Repo) ApplyAttempt(ctx context.Context, a Attempt, average float64) error {
	col, err := XPColumn(a.Mode)
	if err != nil {
		return err
	}
	ins := r.b.Insert(attemptsTableName).
		Columns("user_id", "mode", "difficulty", "score", "xp_earned", "stars_earned", "day", "created_at").
		Values(a.UserID, string(a.Mode), string(a.Difficulty), a.Score, a.XPEarned, a.Stars, a.Day, a.CreatedAt.UTC())
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	upd := r.b.Update(progressTableName).
		Add("xp_total", a.XPEarned).
		Add(col, a.XPEarned).
		Add("total_stars", a.Stars).
		Add("total_sessions", 1).
		Set("average_accuracy", average).
		Set("last_active", a.CreatedAt.UTC()).
		Where(entsql.EQ("user_id", a.UserID))
	res, err := r.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("progress for %s: %w", a.UserID, ErrNotFound)
	}
	return nil
}

// SetStreak caches the computed streak on the progress row.
func (r *Repo) SetStreak(ctx context.Context, userID string, streak int) error {
	upd := r.b.Update(progressTableName).
		Set("streak", streak).
		Where(entsql.EQ("user_id", userID))
	if _, err := r.exec(ctx, upd); err != nil {
		return fmt.Errorf("set streak %s: %w", userID, err)
	}
	return nil
}

// ReplaceProgress overwrites every counter of p.UserID. Used to rebuild
// the cache from the attempt log.
func (r *Repo) ReplaceProgress(ctx context.Context, p Progress) error {
	upd := r.b.Update(progressTableName).
		Set("xp_total", p.XPTotal).
		Set("total_stars", p.TotalStars).
		Set("total_sessions", p.TotalSessions).
		Set("average_accuracy", p.AverageAccuracy).
		Set("streak", p.Streak)
	for _, m := range mode.Chain() {
		upd.Set(xpColumns[m], p.ModeXP[m])
	}
	if p.LastActive.IsZero() {
		upd.SetNull("last_active")
	} else {
		upd.Set("last_active", p.LastActive.UTC())
	}
	upd.Where(entsql.EQ("user_id", p.UserID))

	res, err := r.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("replace progress %s: %w", p.UserID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("progress for %s: %w", p.UserID, ErrNotFound)
	}
	return nil
}

// RebuildProgress recomputes the counters of userID from the attempt log.
// The streak is left to the caller, which owns the calendar.
func (r *Repo) RebuildProgress(ctx context.Context, userID string) (Progress, error) {
	cur, err := r.GetProgress(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	attempts, err := r.Attempts(ctx, userID, 0)
	if err != nil {
		return Progress{}, err
	}

	p := Progress{UserID: userID, ModeXP: make(map[mode.Mode]int), Streak: cur.Streak}
	var sum int
	var last time.Time
	for _, a := range attempts {
		p.XPTotal += a.XPEarned
		p.ModeXP[a.Mode] += a.XPEarned
		p.TotalStars += a.Stars
		p.TotalSessions++
		sum += a.Score
		if a.CreatedAt.After(last) {
			last = a.CreatedAt
		}
	}
	if p.TotalSessions > 0 {
		p.AverageAccuracy = float64(sum) / float64(p.TotalSessions)
	}
	p.LastActive = last
	if err := r.ReplaceProgress(ctx, p); err != nil {
		return Progress{}, err
	}
	return p, nil
}
