// Package progress is the per-user ledger: cumulative counters derived
// from an append-only attempt log, updated atomically per attempt.
package progress

import (
	"time"

	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/store"
)

// Snapshot is a user's progress at one point in time. Streak is always
// freshly computed from the attempt log.
type Snapshot struct {
	UserID          string            `json:"user_id"`
	XPTotal         int               `json:"xp_total"`
	ModeXP          map[mode.Mode]int `json:"mode_xp"`
	TotalStars      int               `json:"total_stars"`
	TotalSessions   int               `json:"total_sessions"`
	AverageAccuracy float64           `json:"average_accuracy"`
	Streak          int               `json:"streak"`
	LastActive      *time.Time        `json:"last_active,omitempty"`
}

// XP returns the XP earned in m.
func (s Snapshot) XP(m mode.Mode) int {
	return s.ModeXP[m]
}

// Attempt is one graded attempt to fold into the ledger.
type Attempt struct {
	Mode       mode.Mode
	Difficulty mode.Difficulty
	Score      int
	XP         int
	Stars      int
}

func fromStore(p store.Progress, streak int) Snapshot {
	s := Snapshot{
		UserID:          p.UserID,
		XPTotal:         p.XPTotal,
		ModeXP:          make(map[mode.Mode]int, len(p.ModeXP)),
		TotalStars:      p.TotalStars,
		TotalSessions:   p.TotalSessions,
		AverageAccuracy: p.AverageAccuracy,
		Streak:          streak,
	}
	for m, xp := range p.ModeXP {
		s.ModeXP[m] = xp
	}
	if !p.LastActive.IsZero() {
		t := p.LastActive
		s.LastActive = &t
	}
	return s
}

// RunningMean folds score into a mean over n earlier values.
func RunningMean(mean float64, n, score int) float64 {
	return (mean*float64(n) + float64(score)) / float64(n+1)
}
