// Package streak computes consecutive-day practice streaks from the days
// a learner was active.
package streak

import (
	"context"
	"sort"
	"time"
)

// Layout is the calendar-day format used in the attempt log.
const Layout = "2006-01-02"

// Day returns the calendar day of t in t's location.
func Day(t time.Time) string {
	return t.Format(Layout)
}

// Compute returns the streak ending at now. days are active calendar days
// in any order; malformed and duplicate entries are ignored.
//
// Days are walked from the most recent backward. Each day that equals the
// expected day, or the day before it, extends the streak. A day further
// back ends the walk. If the most recent day is before yesterday the
// streak is 0 regardless of the walk.
func Compute(days []string, now time.Time) int {
	parsed := parseDesc(days)
	if len(parsed) == 0 {
		return 0
	}

	today := civil(now)
	yesterday := today.AddDate(0, 0, -1)
	expected := today
	n := 0
walk:
	for _, d := range parsed {
		prev := expected.AddDate(0, 0, -1)
		switch {
		case d.Equal(expected) || d.Equal(prev):
			n++
			expected = d.AddDate(0, 0, -1)
		case d.Before(prev):
			break walk
		}
	}
	if parsed[0].Before(yesterday) {
		return 0
	}
	return n
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDesc(days []string) []time.Time {
	seen := make(map[string]bool, len(days))
	out := make([]time.Time, 0, len(days))
	for _, s := range days {
		if seen[s] {
			continue
		}
		seen[s] = true
		d, err := time.Parse(Layout, s)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}

// DaySource lists the distinct active days of a user.
type DaySource interface {
	ActiveDays(ctx context.Context, userID string) ([]string, error)
}

// Calculator computes streaks from stored activity.
type Calculator struct {
	days DaySource
	now  func() time.Time
}

// NewCalculator creates a Calculator. now may be nil for time.Now.
func NewCalculator(days DaySource, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{days: days, now: now}
}

// Streak returns the current streak of userID.
func (c *Calculator) Streak(ctx context.Context, userID string) (int, error) {
	days, err := c.days.ActiveDays(ctx, userID)
	if err != nil {
		return 0, err
	}
	return Compute(days, c.now()), nil
}
