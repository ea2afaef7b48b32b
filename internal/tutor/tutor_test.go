package tutor

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/talkie/internal/badges"
	"github.com/abhisek/talkie/internal/coach"
	"github.com/abhisek/talkie/internal/content"
	"github.com/abhisek/talkie/internal/llm"
	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/progress"
	"github.com/abhisek/talkie/internal/scoring"
	"github.com/abhisek/talkie/internal/session"
	"github.com/abhisek/talkie/internal/speech"
	"github.com/abhisek/talkie/internal/store"
	"github.com/abhisek/talkie/internal/suggest"
)

const testPack = `{"version":"v1.0.0","items":[
  {"id":"s1","category":"sentences","difficulty":"easy","text":"I like apples."},
  {"id":"s2","category":"sentences","difficulty":"easy","text":"The sun is hot."},
  {"id":"w1","category":"spelling","difficulty":"easy","text":"cat"},
  {"id":"p1","category":"puzzle","difficulty":"medium","text":"tiger","hint":"A big striped cat."},
  {"id":"g1","category":"grammar","difficulty":"hard","text":"She ___ to school.","options":["go","goes"],"answer":1,"explanation":"Use goes with she."},
  {"id":"r1","category":"roleplay","difficulty":"easy","text":"What would you like to eat?","scenario":"At a restaurant"}
]}`

type fixture struct {
	tutor    *Tutor
	store    *store.Store
	sessions *session.MemoryStore
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	bank, err := content.Parse([]byte(testPack))
	require.NoError(t, err)

	ledger := progress.NewLedger(s, badges.Default(), progress.WithLocation(time.UTC))
	sessions := session.NewMemoryStore(time.Hour)
	opts = append([]Option{WithRand(func(int) int { return 0 })}, opts...)
	return &fixture{
		tutor:    New(ledger, s, bank, sessions, opts...),
		store:    s,
		sessions: sessions,
	}
}

func (f *fixture) user(t *testing.T) string {
	t.Helper()
	u, err := f.tutor.CreateUser(context.Background(), "", "Mia")
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) session(t *testing.T) string {
	t.Helper()
	id, err := f.tutor.NewSession(context.Background())
	require.NoError(t, err)
	return id
}

// unlockAll books enough XP in every mode to open the whole chain.
func (f *fixture) unlockAll(t *testing.T, userID string) {
	t.Helper()
	for _, m := range mode.Chain() {
		_, err := f.tutor.RecordAttempt(context.Background(), userID, m, mode.Easy, 100, 50, 0)
		require.NoError(t, err)
	}
}

func (f *fixture) state(t *testing.T, sid string) *session.State {
	t.Helper()
	st, err := f.sessions.Load(context.Background(), sid)
	require.NoError(t, err)
	return st
}

type fakeSpeech struct {
	err   error
	texts []string
}

func (f *fakeSpeech) Synthesize(_ context.Context, text string) (speech.Audio, error) {
	if f.err != nil {
		return speech.Audio{}, f.err
	}
	f.texts = append(f.texts, text)
	return speech.Audio{URL: speech.URLPrefix + "clip.mp3"}, nil
}

func TestXPFor(t *testing.T) {
	tests := []struct {
		mode mode.Mode
		res  scoring.Result
		want int
	}{
		{mode.Repeat, scoring.Result{Score: 100, Stars: 3}, 20},
		{mode.SpellBee, scoring.Result{Score: 40, Stars: 0}, 5},
		{mode.Grammar, scoring.Result{Score: 0}, 0},
		{mode.Conversation, scoring.Result{Score: 100, Stars: 1}, ParticipationXP},
		{mode.Meanings, scoring.Result{Score: 0}, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, XPFor(tt.mode, tt.res), "%s %+v", tt.mode, tt.res)
	}
}

func TestCreateUserGeneratesID(t *testing.T) {
	f := newFixture(t)
	u, err := f.tutor.CreateUser(context.Background(), "", "Leo")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	u2, err := f.tutor.CreateUser(context.Background(), "kid-1", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "kid-1", u2.ID)

	_, err = f.tutor.CreateUser(context.Background(), "kid-1", "Ana")
	assert.ErrorIs(t, err, store.ErrExists)
}

func TestSubmitRejectsLockedAndUnknownModes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, sid := f.user(t), f.session(t)

	_, err := f.tutor.Submit(ctx, uid, sid, Attempt{Mode: mode.Repeat, Submission: "hi", Reference: "hi"})
	assert.ErrorIs(t, err, ErrLocked)

	_, err = f.tutor.Submit(ctx, uid, sid, Attempt{Mode: "dance"})
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = f.tutor.Submit(ctx, "nobody", sid, Attempt{Mode: mode.Conversation, Submission: "hi"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConversationTurnsUnlockRoleplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, sid := f.user(t), f.session(t)

	var turn Turn
	for i := 0; i < 5; i++ {
		var err error
		turn, err = f.tutor.Talk(ctx, uid, sid, "Hello")
		require.NoError(t, err)
		assert.Equal(t, ParticipationXP, turn.XP)
		if i < 4 {
			assert.Empty(t, turn.Delta.NewlyUnlocked)
		}
	}
	assert.True(t, turn.Reply.Fallback)
	assert.Equal(t, "Hello. Good try! Can you tell me more?", turn.Reply.Text)
	assert.Equal(t, []mode.Mode{mode.Roleplay}, turn.Delta.NewlyUnlocked)
	assert.Equal(t, 50, turn.Delta.Snapshot.XP(mode.Conversation))

	st := f.state(t, sid)
	assert.Contains(t, st.Transcript, "Child: Hello")
	assert.Contains(t, st.Transcript, "Coach: Hello. Good try!")
}

func TestFirstTurnEarnsFirstBadge(t *testing.T) {
	f := newFixture(t)
	uid, sid := f.user(t), f.session(t)

	turn, err := f.tutor.Talk(context.Background(), uid, sid, "Hi there")
	require.NoError(t, err)
	require.NotEmpty(t, turn.Delta.NewBadges)
	assert.Equal(t, "first_steps", turn.Delta.NewBadges[0].ID)
}

func TestTalkEmptyInput(t *testing.T) {
	f := newFixture(t)
	uid, sid := f.user(t), f.session(t)

	_, err := f.tutor.Talk(context.Background(), uid, sid, "   ")
	assert.ErrorIs(t, err, coach.ErrEmptyInput)

	snap, err := f.tutor.ProgressSnapshot(context.Background(), uid)
	require.NoError(t, err)
	assert.Zero(t, snap.TotalSessions)
}

func TestTalkUsesCoachAndTranscript(t *testing.T) {
	p := llm.NewMockProvider(
		llm.TextResponse("CORRECT: I like cats.\nPRAISE: Nice!\nQUESTION: What color is your cat?"),
		llm.TextResponse("CORRECT: It is black.\nPRAISE: Lovely!\nQUESTION: What is its name?"),
	)
	f := newFixture(t, WithCoach(coach.New(p, nil)))
	ctx := context.Background()
	uid, sid := f.user(t), f.session(t)

	turn, err := f.tutor.Talk(ctx, uid, sid, "i like cat")
	require.NoError(t, err)
	assert.False(t, turn.Reply.Fallback)
	assert.Equal(t, "I like cats. Nice! What color is your cat?", turn.Reply.Text)

	_, err = f.tutor.Talk(ctx, uid, sid, "it black")
	require.NoError(t, err)
	req, ok := p.LastCall()
	require.True(t, ok)
	require.NotEmpty(t, req.Messages)
	assert.Contains(t, req.Messages[0].Content, "Child: i like cat")
	assert.Contains(t, req.Messages[0].Content, "it black")
}

func TestRoleplayTurn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, sid := f.user(t), f.session(t)

	_, err := f.tutor.Roleplay(ctx, uid, sid, "At a restaurant", "What would you like?", "Pizza please")
	assert.ErrorIs(t, err, ErrLocked)

	f.unlockAll(t, uid)
	turn, err := f.tutor.Roleplay(ctx, uid, sid, "At a restaurant", "What would you like?", "Pizza please")
	require.NoError(t, err)
	assert.Equal(t, ParticipationXP, turn.XP)
	assert.Contains(t, f.state(t, sid).Transcript, "Coach: What would you like?")
}

func TestMeaning(t *testing.T) {
	t.Run("unavailable records nothing", func(t *testing.T) {
		f := newFixture(t)
		uid, sid := f.user(t), f.session(t)
		f.unlockAll(t, uid)

		_, err := f.tutor.Meaning(context.Background(), uid, sid, "huge")
		assert.ErrorIs(t, err, coach.ErrUnavailable)

		snap, err := f.tutor.ProgressSnapshot(context.Background(), uid)
		require.NoError(t, err)
		assert.Equal(t, len(mode.Chain()), snap.TotalSessions)
	})

	t.Run("explains and awards", func(t *testing.T) {
		p := llm.NewMockProvider(llm.TextResponse("MEANING: very big\nEXAMPLE: The elephant is huge."))
		f := newFixture(t, WithCoach(coach.New(p, nil)))
		uid, sid := f.user(t), f.session(t)
		f.unlockAll(t, uid)

		got, err := f.tutor.Meaning(context.Background(), uid, sid, "huge")
		require.NoError(t, err)
		assert.Equal(t, "very big", got.Meaning.Meaning)
		assert.Equal(t, "The elephant is huge.", got.Meaning.Example)
		assert.Equal(t, ParticipationXP, got.XP)
		assert.Equal(t, 60, got.Delta.Snapshot.XP(mode.Meanings))
	})
}

func TestPickContentAvoidsRepeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sid := f.session(t)

	a, err := f.tutor.PickContent(ctx, sid, content.Sentences, mode.Easy)
	require.NoError(t, err)
	b, err := f.tutor.PickContent(ctx, sid, content.Sentences, mode.Easy)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, b.Text, f.state(t, sid).LastIssued[content.Sentences])
	assert.False(t, a.Generated)
}

func TestPickContentFallsBackAcrossDifficulties(t *testing.T) {
	f := newFixture(t)
	got, err := f.tutor.PickContent(context.Background(), f.session(t), content.Spelling, mode.Hard)
	require.NoError(t, err)
	assert.Equal(t, "w1", got.ID)
	assert.Equal(t, mode.Easy, got.Difficulty)
}

func TestPickContentEmptyCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.tutor.PickContent(context.Background(), f.session(t), content.Meanings, mode.Easy)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestPickContentGeneratesWhenPoolExhausted(t *testing.T) {
	p := llm.NewMockProvider()
	fallback := llm.TextResponse("SENTENCE: My dog likes to run.")
	p.Fallback = &fallback
	f := newFixture(t, WithCoach(coach.New(p, nil)))
	ctx := context.Background()
	sid := f.session(t)

	for i := 0; i < 2; i++ {
		got, err := f.tutor.PickContent(ctx, sid, content.Sentences, mode.Easy)
		require.NoError(t, err)
		assert.False(t, got.Generated)
	}
	assert.Zero(t, p.CallCount())

	got, err := f.tutor.PickContent(ctx, sid, content.Sentences, mode.Easy)
	require.NoError(t, err)
	assert.True(t, got.Generated)
	assert.True(t, strings.HasPrefix(got.ID, "gen-"))
	assert.Equal(t, "My dog likes to run.", got.Text)
	assert.Equal(t, got.Text, f.state(t, sid).LastIssued[content.Sentences])
}

// gatedProvider blocks every call until release is closed.
type gatedProvider struct {
	entered chan struct{}
	release chan struct{}
	reply   string
}

func (g *gatedProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	g.entered <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &llm.Response{Content: g.reply, Stop: llm.StopEnd}, nil
}

func (g *gatedProvider) ModelID() string { return "gated" }

func TestSessionUsableWhileCoachIsThinking(t *testing.T) {
	t.Run("talk", func(t *testing.T) {
		p := &gatedProvider{
			entered: make(chan struct{}, 1),
			release: make(chan struct{}),
			reply:   "CORRECT: Hello.\nPRAISE: Nice!\nQUESTION: How are you?",
		}
		f := newFixture(t, WithCoach(coach.New(p, nil)))
		ctx := context.Background()
		uid, sid := f.user(t), f.session(t)

		talked := make(chan error, 1)
		go func() {
			_, err := f.tutor.Talk(ctx, uid, sid, "hello")
			talked <- err
		}()
		<-p.entered

		picked := make(chan error, 1)
		go func() {
			_, err := f.tutor.PickContent(ctx, sid, content.Spelling, mode.Easy)
			picked <- err
		}()
		select {
		case err := <-picked:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("PickContent waited for the coach reply")
		}

		close(p.release)
		require.NoError(t, <-talked)

		st := f.state(t, sid)
		assert.Equal(t, "cat", st.LastIssued[content.Spelling])
		assert.Contains(t, st.Transcript, "Child: hello")
		assert.Contains(t, st.Transcript, "Coach: Hello. Nice! How are you?")
	})

	t.Run("sentence generation", func(t *testing.T) {
		p := &gatedProvider{
			entered: make(chan struct{}, 1),
			release: make(chan struct{}),
			reply:   "SENTENCE: Birds can fly.",
		}
		f := newFixture(t, WithCoach(coach.New(p, nil)))
		ctx := context.Background()
		sid := f.session(t)

		for i := 0; i < 2; i++ {
			_, err := f.tutor.PickContent(ctx, sid, content.Sentences, mode.Easy)
			require.NoError(t, err)
		}

		generated := make(chan Issued, 1)
		go func() {
			got, err := f.tutor.PickContent(ctx, sid, content.Sentences, mode.Easy)
			assert.NoError(t, err)
			generated <- got
		}()
		<-p.entered

		picked := make(chan error, 1)
		go func() {
			_, err := f.tutor.PickContent(ctx, sid, content.Puzzle, mode.Medium)
			picked <- err
		}()
		select {
		case err := <-picked:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("PickContent waited for sentence generation")
		}

		close(p.release)
		got := <-generated
		assert.True(t, got.Generated)
		assert.Equal(t, "Birds can fly.", got.Text)
		require.NotNil(t, f.state(t, sid).Puzzle)
	})
}

func TestRepeatGradesAgainstIssuedSentence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, sid := f.user(t), f.session(t)
	f.unlockAll(t, uid)

	_, err := f.tutor.Submit(ctx, uid, sid, Attempt{Mode: mode.Repeat, Submission: "anything"})
	assert.ErrorIs(t, err, session.ErrExpired)

	issued, err := f.tutor.PickContent(ctx, sid, content.Sentences, mode.Easy)
	require.NoError(t, err)

	out, err := f.tutor.Submit(ctx, uid, sid, Attempt{Mode: mode.Repeat, Submission: issued.Text})
	require.NoError(t, err)
	assert.Equal(t, 100, out.Result.Score)
	assert.Equal(t, BaseXP+XPPerStar*out.Result.Stars, out.XP)
}

func TestPuzzleFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, sid := f.user(t), f.session(t)
	f.unlockAll(t, uid)

	issued, err := f.tutor.PickContent(ctx, sid, content.Puzzle, mode.Medium)
	require.NoError(t, err)
	assert.NotEqual(t, "tiger", issued.Text)
	assert.Equal(t, sortedLetters("tiger"), sortedLetters(issued.Text))
	assert.Equal(t, "A big striped cat.", issued.Hint)

	out, err := f.tutor.Submit(ctx, uid, sid, Attempt{Mode: mode.WordPuzzle, Submission: "tigre"})
	require.NoError(t, err)
	assert.False(t, out.Result.Correct)
	require.NotNil(t, f.state(t, sid).Puzzle)
	assert.Equal(t, 1, f.state(t, sid).Puzzle.Failures)

	out, err = f.tutor.Submit(ctx, uid, sid, Attempt{Mode: mode.WordPuzzle, Submission: "Tiger", Difficulty: mode.Easy})
	require.NoError(t, err)
	assert.True(t, out.Result.Correct)
	assert.Equal(t, 20, out.XP)
	assert.Nil(t, f.state(t, sid).Puzzle)

	attempts, err := f.store.Repo().Attempts(ctx, uid, 0)
	require.NoError(t, err)
	last := attempts[len(attempts)-1]
	assert.Equal(t, mode.WordPuzzle, last.Mode)
	assert.Equal(t, mode.Medium, last.Difficulty, "difficulty comes from the issued puzzle")

	_, err = f.tutor.Submit(ctx, uid, sid, Attempt{Mode: mode.WordPuzzle, Submission: "tiger"})
	assert.ErrorIs(t, err, session.ErrExpired)
}

func TestPickingPuzzleResetsFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, sid := f.user(t), f.session(t)
	f.unlockAll(t, uid)

	_, err := f.tutor.PickContent(ctx, sid, content.Puzzle, mode.Medium)
	require.NoError(t, err)
	_, err = f.tutor.GradeAttempt(ctx, sid, Attempt{Mode: mode.WordPuzzle, Submission: "xxxxx"})
	require.NoError(t, err)
	require.Equal(t, 1, f.state(t, sid).Puzzle.Failures)

	_, err = f.tutor.PickContent(ctx, sid, content.Puzzle, mode.Medium)
	require.NoError(t, err)
	assert.Zero(t, f.state(t, sid).Puzzle.Failures)
}

func TestGrammarFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid, sid := f.user(t), f.session(t)
	f.unlockAll(t, uid)

	issued, err := f.tutor.PickContent(ctx, sid, content.Grammar, mode.Hard)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "goes"}, issued.Options)
	assert.Equal(t, "She ___ to school.", issued.Text)

	out, err := f.tutor.Submit(ctx, uid, sid, Attempt{Mode: mode.Grammar, Choice: 0})
	require.NoError(t, err)
	assert.False(t, out.Result.Correct)
	assert.Zero(t, out.XP)
	assert.NotNil(t, f.state(t, sid).Grammar, "a wrong answer keeps the question open")

	out, err = f.tutor.Submit(ctx, uid, sid, Attempt{Mode: mode.Grammar, Choice: 1})
	require.NoError(t, err)
	assert.True(t, out.Result.Correct)
	assert.Equal(t, 3, out.Result.Stars)
	assert.Equal(t, "Use goes with she.", out.Result.Explanation)
	assert.Equal(t, 20, out.XP)

	_, err = f.tutor.Submit(ctx, uid, sid, Attempt{Mode: mode.Grammar, Choice: 1})
	assert.ErrorIs(t, err, session.ErrExpired)
}

func TestProgressSnapshotView(t *testing.T) {
	f := newFixture(t)
	uid := f.user(t)

	v, err := f.tutor.ProgressSnapshot(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, []mode.Mode{mode.Conversation}, v.Unlocked)
	require.NotNil(t, v.Next)
	assert.Equal(t, mode.Roleplay, v.Next.Feature)
	assert.Len(t, v.Badges, len(f.tutor.Rules().Definitions()))

	f.unlockAll(t, uid)
	v, err = f.tutor.ProgressSnapshot(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, mode.Chain(), v.Unlocked)
	assert.Nil(t, v.Next)

	var earned int
	for _, b := range v.Badges {
		if b.Earned {
			earned++
		}
	}
	assert.Positive(t, earned)
}

func TestSuggestionsForNewUser(t *testing.T) {
	f := newFixture(t)
	got, err := f.tutor.Suggestions(context.Background(), f.user(t))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, suggest.TypeWelcome, got[0].Type)
}

func TestSpeechIsOptional(t *testing.T) {
	ctx := context.Background()

	t.Run("attached", func(t *testing.T) {
		sp := &fakeSpeech{}
		f := newFixture(t, WithSpeech(sp))
		uid, sid := f.user(t), f.session(t)

		issued, err := f.tutor.PickContent(ctx, sid, content.Sentences, mode.Easy)
		require.NoError(t, err)
		assert.Equal(t, "/audio/clip.mp3", issued.Audio)

		turn, err := f.tutor.Talk(ctx, uid, sid, "Hello")
		require.NoError(t, err)
		assert.Equal(t, "/audio/clip.mp3", turn.Audio)
		assert.Equal(t, []string{issued.Text, turn.Reply.Text}, sp.texts)
	})

	t.Run("failure is not an error", func(t *testing.T) {
		f := newFixture(t, WithSpeech(&fakeSpeech{err: errors.New("tts down")}))
		issued, err := f.tutor.PickContent(ctx, f.session(t), content.Sentences, mode.Easy)
		require.NoError(t, err)
		assert.Empty(t, issued.Audio)
	})

	t.Run("puzzles are never spoken", func(t *testing.T) {
		sp := &fakeSpeech{}
		f := newFixture(t, WithSpeech(sp))
		issued, err := f.tutor.PickContent(ctx, f.session(t), content.Puzzle, mode.Medium)
		require.NoError(t, err)
		assert.Empty(t, issued.Audio)
		assert.Empty(t, sp.texts)
	})
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t)

	require.NoError(t, f.tutor.DeleteUser(ctx, uid))
	_, err := f.tutor.ProgressSnapshot(ctx, uid)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func sortedLetters(s string) string {
	r := []rune(s)
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return string(r)
}
