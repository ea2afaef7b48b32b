// Package unlock gates exercise modes behind XP earned in the mode before
// them in the chain.
package unlock

import "github.com/abhisek/talkie/internal/mode"

// Threshold is the XP a mode needs before the next one in the chain opens.
const Threshold = 50

// XPReader exposes per-mode XP.
type XPReader interface {
	XP(m mode.Mode) int
}

// Next describes the closest locked mode.
type Next struct {
	Feature      mode.Mode `json:"feature"`
	BlockingMode mode.Mode `json:"blocking_mode"`
	XPNeeded     int       `json:"xp_needed"`
}

// IsUnlocked reports whether m is open. The first mode always is; every
// other mode needs Threshold XP in its predecessor. XP earned in later
// modes never counts.
func IsUnlocked(p XPReader, m mode.Mode) bool {
	i := m.Index()
	return i >= 0 && i < len(Unlocked(p))
}

// Unlocked returns the open modes in chain order. The chain is walked from
// the start and stops at the first locked mode, so a mode is never open
// unless every mode before it is.
func Unlocked(p XPReader) []mode.Mode {
	chain := mode.Chain()
	out := []mode.Mode{chain[0]}
	for i := 1; i < len(chain); i++ {
		if p.XP(chain[i-1]) < Threshold {
			break
		}
		out = append(out, chain[i])
	}
	return out
}

// NextUnlock returns the first locked mode and what it waits on, or nil
// when the whole chain is open.
func NextUnlock(p XPReader) *Next {
	chain := mode.Chain()
	for i := 1; i < len(chain); i++ {
		blocking := chain[i-1]
		if xp := p.XP(blocking); xp < Threshold {
			return &Next{Feature: chain[i], BlockingMode: blocking, XPNeeded: Threshold - xp}
		}
	}
	return nil
}

// NewlyUnlocked returns modes open after but not before, in chain order.
func NewlyUnlocked(before, after XPReader) []mode.Mode {
	was := make(map[mode.Mode]bool)
	for _, m := range Unlocked(before) {
		was[m] = true
	}
	var out []mode.Mode
	for _, m := range Unlocked(after) {
		if !was[m] {
			out = append(out, m)
		}
	}
	return out
}
