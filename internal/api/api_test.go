package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/talkie/internal/badges"
	"github.com/abhisek/talkie/internal/coach"
	"github.com/abhisek/talkie/internal/content"
	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/progress"
	"github.com/abhisek/talkie/internal/session"
	"github.com/abhisek/talkie/internal/store"
	"github.com/abhisek/talkie/internal/tutor"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router http.Handler
	tutor  *tutor.Tutor
}

func newTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ledger := progress.NewLedger(s, badges.Default(), progress.WithLocation(time.UTC))
	tu := tutor.New(ledger, s, content.Default(), session.NewMemoryStore(time.Hour),
		tutor.WithRand(func(int) int { return 0 }))
	cfg.Tutor = tu
	return &testServer{router: NewRouter(cfg), tutor: tu}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorEnvelope](t, rec).Error.Code
}

func (ts *testServer) createUser(t *testing.T, id string) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/users", map[string]string{"id": id, "name": "Mia"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (ts *testServer) newSession(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[map[string]string](t, rec)["session_id"]
}

func (ts *testServer) unlockAll(t *testing.T, userID string) {
	t.Helper()
	for _, m := range mode.Chain() {
		_, err := ts.tutor.RecordAttempt(context.Background(), userID, m, mode.Easy, 100, 50, 0)
		require.NoError(t, err)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})
	rec := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUsers(t *testing.T) {
	ts := newTestServer(t, Config{})

	ts.createUser(t, "kid-1")

	rec := ts.do(t, http.MethodPost, "/api/users", map[string]string{"id": "kid-1", "name": "Mia"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_exists", errorCode(t, rec))

	rec = ts.do(t, http.MethodPost, "/api/users", map[string]string{"id": "kid-2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(t, rec))

	rec = ts.do(t, http.MethodGet, "/api/users/kid-1/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[map[string]any](t, rec)
	assert.Equal(t, []any{"conversation"}, view["unlocked"])
	assert.NotNil(t, view["next_unlock"])

	rec = ts.do(t, http.MethodDelete, "/api/users/kid-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/users/kid-1/progress", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))

	rec = ts.do(t, http.MethodDelete, "/api/users/kid-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSuggestionsAndBadges(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.createUser(t, "kid-1")

	rec := ts.do(t, http.MethodGet, "/api/users/kid-1/suggestions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Suggestions []struct {
			Type string `json:"type"`
		} `json:"suggestions"`
	}](t, rec)
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, "welcome", got.Suggestions[0].Type)

	rec = ts.do(t, http.MethodGet, "/api/badges", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string][]badges.Definition](t, rec)
	assert.Len(t, list["badges"], len(badges.Default()))
}

func TestCoachTurnAwardsXP(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.createUser(t, "kid-1")
	sid := ts.newSession(t)

	rec := ts.do(t, http.MethodPost, "/api/sessions/"+sid+"/coach", map[string]string{"user_id": "kid-1", "text": "I has a dog"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	turn := decode[tutor.Turn](t, rec)
	assert.True(t, turn.Reply.Fallback)
	assert.Equal(t, tutor.ParticipationXP, turn.XP)

	rec = ts.do(t, http.MethodPost, "/api/sessions/"+sid+"/coach", map[string]string{"user_id": "kid-1", "text": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_input", errorCode(t, rec))
}

func TestAttemptErrors(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.createUser(t, "kid-1")
	sid := ts.newSession(t)
	path := "/api/sessions/" + sid + "/attempts"

	rec := ts.do(t, http.MethodPost, path, map[string]any{"user_id": "kid-1", "mode": "grammar", "choice": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "mode_locked", errorCode(t, rec))

	rec = ts.do(t, http.MethodPost, path, map[string]any{"user_id": "kid-1", "mode": "juggling"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_mode", errorCode(t, rec))

	rec = ts.do(t, http.MethodPost, path, map[string]any{"mode": "repeat"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(t, rec))

	ts.unlockAll(t, "kid-1")
	rec = ts.do(t, http.MethodPost, path, map[string]any{"user_id": "kid-1", "mode": "grammar", "choice": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "session_expired", errorCode(t, rec))
}

func TestGrammarRoundTrip(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.createUser(t, "kid-1")
	ts.unlockAll(t, "kid-1")
	sid := ts.newSession(t)

	rec := ts.do(t, http.MethodGet, "/api/sessions/"+sid+"/content/grammar?difficulty=medium", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "answer")
	assert.NotContains(t, rec.Body.String(), "explanation")
	issued := decode[tutor.Issued](t, rec)
	require.NotEmpty(t, issued.Options)

	item, ok := content.Default().Item(issued.ID)
	require.True(t, ok)

	rec = ts.do(t, http.MethodPost, "/api/sessions/"+sid+"/attempts",
		map[string]any{"user_id": "kid-1", "mode": "grammar", "choice": item.Answer})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[tutor.Outcome](t, rec)
	assert.True(t, out.Result.Correct)
	assert.Equal(t, mode.Medium.Stars(), out.Result.Stars)
	assert.Equal(t, tutor.BaseXP+tutor.XPPerStar*out.Result.Stars, out.XP)
}

func TestPuzzleContentHidesWord(t *testing.T) {
	ts := newTestServer(t, Config{})
	sid := ts.newSession(t)

	rec := ts.do(t, http.MethodGet, "/api/sessions/"+sid+"/content/unscramble", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	issued := decode[tutor.Issued](t, rec)
	assert.Equal(t, content.Puzzle, issued.Category)

	item, ok := content.Default().Item(issued.ID)
	require.True(t, ok)
	assert.NotEqual(t, strings.ToLower(item.Text), issued.Text)
}

func TestMeaning(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.createUser(t, "kid-1")
	sid := ts.newSession(t)

	rec := ts.do(t, http.MethodGet, "/api/sessions/"+sid+"/meaning?word=huge", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/sessions/"+sid+"/meaning?word=huge&user_id=kid-1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ts.unlockAll(t, "kid-1")
	rec = ts.do(t, http.MethodGet, "/api/sessions/"+sid+"/meaning?word=huge&user_id=kid-1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "coach_unavailable", errorCode(t, rec))
}

func TestAudioIsServed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp3"), []byte("ID3"), 0o644))
	ts := newTestServer(t, Config{AudioDir: dir})

	rec := ts.do(t, http.MethodGet, "/audio/clip.mp3", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ID3", rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/audio/missing.mp3", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	preflight := func(r http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	ts := newTestServer(t, Config{AllowOrigins: []string{"http://localhost:5173"}})
	rec := preflight(ts.router, "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = preflight(ts.router, "http://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	open := newTestServer(t, Config{})
	rec = preflight(open.router, "http://anywhere.example")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("user x: %w", store.ErrNotFound), http.StatusNotFound, "not_found"},
		{session.ErrExpired, http.StatusConflict, "session_expired"},
		{tutor.ErrLocked, http.StatusForbidden, "mode_locked"},
		{tutor.ErrNoContent, http.StatusNotFound, "no_content"},
		{coach.ErrUnavailable, http.StatusServiceUnavailable, "coach_unavailable"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		status, code := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}

func TestServerStopsWithContext(t *testing.T) {
	ts := newTestServer(t, Config{})
	srv := NewServer("127.0.0.1:0", Config{Tutor: ts.tutor})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
