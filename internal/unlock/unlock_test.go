package unlock

import (
	"math/rand/v2"
	"testing"

	"github.com/abhisek/talkie/internal/mode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type xpMap map[mode.Mode]int

func (x xpMap) XP(m mode.Mode) int { return x[m] }

func TestUnlockedFreshUser(t *testing.T) {
	got := Unlocked(xpMap{})
	assert.Equal(t, []mode.Mode{mode.Conversation}, got)
	assert.True(t, IsUnlocked(xpMap{}, mode.Conversation))
	assert.False(t, IsUnlocked(xpMap{}, mode.Roleplay))
}

func TestUnlockedWaterfall(t *testing.T) {
	p := xpMap{mode.Conversation: 50, mode.Roleplay: 49}
	assert.Equal(t, []mode.Mode{mode.Conversation, mode.Roleplay}, Unlocked(p))

	p[mode.Roleplay] = 50
	assert.Equal(t, []mode.Mode{mode.Conversation, mode.Roleplay, mode.Repeat}, Unlocked(p))
}

func TestLaterXPDoesNotSkipAhead(t *testing.T) {
	// Lots of grammar XP does not open meanings while repeat is still short.
	p := xpMap{mode.Conversation: 60, mode.Roleplay: 60, mode.Repeat: 10, mode.Grammar: 500}
	assert.False(t, IsUnlocked(p, mode.Meanings))
	assert.False(t, IsUnlocked(p, mode.WordPuzzle))
	assert.True(t, IsUnlocked(p, mode.Repeat))
}

func TestUnknownModeLocked(t *testing.T) {
	assert.False(t, IsUnlocked(xpMap{}, mode.Mode("chess")))
}

func TestNoUnlockWithoutPrerequisite(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	chain := mode.Chain()
	for i := 0; i < 500; i++ {
		p := xpMap{}
		for _, m := range chain {
			p[m] = r.IntN(120)
		}
		for k, m := range chain {
			if !IsUnlocked(p, m) {
				continue
			}
			for _, before := range chain[:k] {
				if !IsUnlocked(p, before) {
					t.Fatalf("%s unlocked but %s locked for %v", m, before, p)
				}
			}
		}
	}
}

func TestNextUnlock(t *testing.T) {
	n := NextUnlock(xpMap{mode.Conversation: 20})
	require.NotNil(t, n)
	assert.Equal(t, Next{Feature: mode.Roleplay, BlockingMode: mode.Conversation, XPNeeded: 30}, *n)

	n = NextUnlock(xpMap{mode.Conversation: 50, mode.Roleplay: 50, mode.Repeat: 5})
	require.NotNil(t, n)
	assert.Equal(t, mode.SpellBee, n.Feature)
	assert.Equal(t, 45, n.XPNeeded)

	all := xpMap{}
	for _, m := range mode.Chain() {
		all[m] = Threshold
	}
	assert.Nil(t, NextUnlock(all))
	assert.Len(t, Unlocked(all), len(mode.Chain()))
}

func TestNewlyUnlocked(t *testing.T) {
	before := xpMap{mode.Conversation: 45}
	after := xpMap{mode.Conversation: 55}
	assert.Equal(t, []mode.Mode{mode.Roleplay}, NewlyUnlocked(before, after))
	assert.Empty(t, NewlyUnlocked(after, after))
}
