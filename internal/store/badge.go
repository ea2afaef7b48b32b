package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// AwardedBadges returns the badges userID owns, in the order earned.
func (r *Repo) AwardedBadges(ctx context.Context, userID string) ([]BadgeAward, error) {
	t := r.b.Table(badgeAwardsTableName)
	sel := r.b.Select(t.C("badge_id"), t.C("awarded_at")).
		From(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		OrderBy(t.C("id"))

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("awarded badges %s: %w", userID, err)
	}
	defer rows.Close()

	var out []BadgeAward
	for rows.Next() {
		var a BadgeAward
		if err := rows.Scan(&a.BadgeID, &a.AwardedAt); err != nil {
			return nil, fmt.Errorf("scan badge award: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AwardBadge records badgeID for userID unless it is already owned, in
// which case the original award time is kept. It reports whether a new
// row was written.
func (r *Repo) AwardBadge(ctx context.Context, userID, badgeID string, at time.Time) (bool, error) {
	ins := r.b.Insert(badgeAwardsTableName).
		Columns("user_id", "badge_id", "awarded_at").
		Values(userID, badgeID, at.UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id", "badge_id"),
			entsql.DoNothing(),
		)
	res, err := r.exec(ctx, ins)
	if err != nil {
		return false, fmt.Errorf("award badge %s to %s: %w", badgeID, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("award badge rows affected: %w", err)
	}
	return n > 0, nil
}
