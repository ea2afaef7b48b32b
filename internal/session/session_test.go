package session

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/talkie/internal/content"
	"github.com/abhisek/talkie/internal/mode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendTranscriptCaps(t *testing.T) {
	st := New("s1")
	st.AppendTranscript("Child: hello")
	st.AppendTranscript("Coach: hi there")
	assert.Equal(t, "Child: hello\nCoach: hi there", st.Transcript)

	for i := 0; i < 100; i++ {
		st.AppendTranscript(strings.Repeat("x", 40))
	}
	assert.Len(t, []rune(st.Transcript), MaxTranscript)
	assert.True(t, strings.HasSuffix(st.Transcript, strings.Repeat("x", 40)))
}

func TestHistoryCreatedOnDemand(t *testing.T) {
	st := &State{ID: "s"}
	h := st.History(content.Spelling)
	h.Push("cat")
	assert.True(t, st.History(content.Spelling).Contains("cat"))
	assert.False(t, st.History(content.Puzzle).Contains("cat"))
}

func testStoreRoundTrip(t *testing.T, s Store) {
	ctx := context.Background()

	st, err := s.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", st.ID)
	assert.Nil(t, st.Puzzle)

	st.History(content.Sentences).Push("sentences-easy-1")
	st.Puzzle = &IssuedPuzzle{Word: "planet", Scrambled: "tenalp", Difficulty: mode.Medium, Failures: 1}
	st.Grammar = &IssuedGrammar{Answer: 2, Options: []string{"a", "b", "c"}, Difficulty: mode.Hard}
	st.Issue(content.Spelling, "friend")
	st.AppendTranscript("Child: hi")
	require.NoError(t, s.Save(ctx, st))

	got, err := s.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, got.History(content.Sentences).Contains("sentences-easy-1"))
	require.NotNil(t, got.Puzzle)
	assert.Equal(t, 1, got.Puzzle.Failures)
	require.NotNil(t, got.Grammar)
	assert.Equal(t, 2, got.Grammar.Answer)
	assert.Equal(t, "friend", got.LastIssued[content.Spelling])
	assert.Equal(t, "Child: hi", got.Transcript)

	require.NoError(t, s.Delete(ctx, "fresh"))
	got, err = s.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.Nil(t, got.Puzzle)
}

func TestMemoryStore(t *testing.T) {
	testStoreRoundTrip(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)
	st := New("a")
	require.NoError(t, s.Save(ctx, st))
	st.Puzzle = &IssuedPuzzle{Word: "cat"}

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got.Puzzle, "unsaved mutation leaked into the store")
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return now }

	st := New("a")
	st.Puzzle = &IssuedPuzzle{Word: "cat"}
	require.NoError(t, s.Save(ctx, st))
	assert.Equal(t, 1, s.Len())

	now = now.Add(59 * time.Minute)
	got, _ := s.Load(ctx, "a")
	assert.NotNil(t, got.Puzzle)

	now = now.Add(2 * time.Minute)
	got, _ = s.Load(ctx, "a")
	assert.Nil(t, got.Puzzle)
	assert.Equal(t, 0, s.Len())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TALKIE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TALKIE_TEST_REDIS_ADDR not set")
	}
	rdb, err := DialRedis(context.Background(), addr)
	require.NoError(t, err)
	s := NewRedisStore(rdb, time.Minute)
	defer s.Close()
	testStoreRoundTrip(t, s)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TALKIE_REDIS_ADDR", "")
	t.Setenv("TALKIE_SESSION_TTL", "")
	assert.Equal(t, DefaultConfig(), ConfigFromEnv())

	t.Setenv("TALKIE_REDIS_ADDR", "localhost:6379")
	t.Setenv("TALKIE_SESSION_TTL", "30m")
	cfg := ConfigFromEnv()
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Minute, cfg.TTL)

	t.Setenv("TALKIE_SESSION_TTL", "soon")
	assert.Equal(t, DefaultTTL, ConfigFromEnv().TTL)
}

func TestOpenWithoutRedisIsInMemory(t *testing.T) {
	st, closeFn, err := Open(context.Background(), Config{TTL: time.Minute})
	require.NoError(t, err)
	_, ok := st.(*MemoryStore)
	assert.True(t, ok)
	assert.NoError(t, closeFn())
}
