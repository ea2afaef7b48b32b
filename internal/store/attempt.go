package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/talkie/internal/mode"
)

var attemptSelectColumns = []string{"id", "user_id", "mode", "difficulty", "score", "xp_earned", "stars_earned", "day", "created_at"}

// Attempts returns the attempt log of userID, oldest first. limit 0 means
// all of it.
func (r *Repo) Attempts(ctx context.Context, userID string, limit int) ([]Attempt, error) {
	t := r.b.Table(attemptsTableName)
	sel := r.b.Select(qualify(t, attemptSelectColumns)...).
		From(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		OrderBy(t.C("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	return r.scanAttempts(ctx, sel)
}

// RecentBelow returns the newest attempts of userID scoring under
// threshold, newest first.
func (r *Repo) RecentBelow(ctx context.Context, userID string, threshold, limit int) ([]Attempt, error) {
	t := r.b.Table(attemptsTableName)
	sel := r.b.Select(qualify(t, attemptSelectColumns)...).
		From(t).
		Where(entsql.And(
			entsql.EQ(t.C("user_id"), userID),
			entsql.LT(t.C("score"), threshold),
		)).
		OrderBy(entsql.Desc(t.C("id")))
	if limit > 0 {
		sel.Limit(limit)
	}
	return r.scanAttempts(ctx, sel)
}

// ActiveDays returns the distinct days on which userID logged an attempt,
// most recent first, as YYYY-MM-DD strings.
func (r *Repo) ActiveDays(ctx context.Context, userID string) ([]string, error) {
	t := r.b.Table(attemptsTableName)
	sel := r.b.Select(t.C("day")).
		Distinct().
		From(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		OrderBy(entsql.Desc(t.C("day")))

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("active days %s: %w", userID, err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// ModeStats returns attempt count and mean score per mode for userID.
// Modes never attempted are absent.
func (r *Repo) ModeStats(ctx context.Context, userID string) ([]ModeStat, error) {
	t := r.b.Table(attemptsTableName)
	sel := r.b.Select(
		t.C("mode"),
		entsql.As(entsql.Count("*"), "attempts"),
		entsql.As(entsql.Sum(t.C("score")), "total"),
	).
		From(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		GroupBy(t.C("mode")).
		OrderBy(t.C("mode"))

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("mode stats %s: %w", userID, err)
	}
	defer rows.Close()

	var out []ModeStat
	for rows.Next() {
		var (
			m     string
			n     int
			total int64
		)
		if err := rows.Scan(&m, &n, &total); err != nil {
			return nil, fmt.Errorf("scan mode stat: %w", err)
		}
		st := ModeStat{Mode: mode.Mode(m), Attempts: n}
		if n > 0 {
			st.MeanScore = float64(total) / float64(n)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Scores returns every score userID has logged, oldest first.
func (r *Repo) Scores(ctx context.Context, userID string) ([]int, error) {
	attempts, err := r.Attempts(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(attempts))
	for i, a := range attempts {
		out[i] = a.Score
	}
	return out, nil
}

func (r *Repo) scanAttempts(ctx context.Context, sel *entsql.Selector) ([]Attempt, error) {
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAttempt(rows *sql.Rows) (Attempt, error) {
	var (
		a       Attempt
		m, diff string
	)
	err := rows.Scan(&a.ID, &a.UserID, &m, &diff, &a.Score, &a.XPEarned, &a.Stars, &a.Day, &a.CreatedAt)
	if err != nil {
		return Attempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	a.Mode = mode.Mode(m)
	a.Difficulty = mode.Difficulty(diff)
	return a, nil
}

func qualify(t *entsql.SelectTable, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = t.C(c)
	}
	return out
}
