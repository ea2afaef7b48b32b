package suggest

import (
	"context"
	"fmt"

	"github.com/abhisek/talkie/internal/progress"
	"github.com/abhisek/talkie/internal/store"
)

// AttemptStats reads aggregates from the attempt log.
type AttemptStats interface {
	ModeStats(ctx context.Context, userID string) ([]store.ModeStat, error)
	RecentBelow(ctx context.Context, userID string, threshold, limit int) ([]store.Attempt, error)
}

// SnapshotSource returns a user's current progress.
type SnapshotSource interface {
	Snapshot(ctx context.Context, userID string) (progress.Snapshot, error)
}

// Synthesizer gathers the inputs for Synthesize.
type Synthesizer struct {
	stats     AttemptStats
	snapshots SnapshotSource
}

// NewSynthesizer returns a Synthesizer.
func NewSynthesizer(stats AttemptStats, snapshots SnapshotSource) *Synthesizer {
	return &Synthesizer{stats: stats, snapshots: snapshots}
}

// Suggestions returns the ranked suggestions for userID.
func (s *Synthesizer) Suggestions(ctx context.Context, userID string) ([]Suggestion, error) {
	snap, err := s.snapshots.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.ModeStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("suggestions for %s: %w", userID, err)
	}
	low, err := s.stats.RecentBelow(ctx, userID, LowScore, RecentLowLimit)
	if err != nil {
		return nil, fmt.Errorf("suggestions for %s: %w", userID, err)
	}
	return Synthesize(Input{Snapshot: snap, Stats: stats, RecentLow: low}), nil
}
