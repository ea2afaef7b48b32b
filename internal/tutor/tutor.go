// Package tutor is the entry point the HTTP layer and CLI talk to. It ties
// grading, the progress ledger, unlocks, badges, content selection,
// suggestions and the coach together per user and per session.
package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/talkie/internal/badges"
	"github.com/abhisek/talkie/internal/coach"
	"github.com/abhisek/talkie/internal/content"
	"github.com/abhisek/talkie/internal/keylock"
	"github.com/abhisek/talkie/internal/logger"
	"github.com/abhisek/talkie/internal/progress"
	"github.com/abhisek/talkie/internal/session"
	"github.com/abhisek/talkie/internal/speech"
	"github.com/abhisek/talkie/internal/store"
	"github.com/abhisek/talkie/internal/suggest"
)

var (
	// ErrLocked is returned when an attempt targets a mode the user has
	// not unlocked yet.
	ErrLocked = errors.New("tutor: mode is locked")

	// ErrUnknownMode is returned for a mode outside the chain.
	ErrUnknownMode = errors.New("tutor: unknown mode")

	// ErrNoContent is returned when a category has no items at all.
	ErrNoContent = errors.New("tutor: no content available")
)

// Tutor is safe for concurrent use.
type Tutor struct {
	ledger   *progress.Ledger
	store    *store.Store
	rules    badges.Rules
	bank     *content.Bank
	sessions session.Store
	coach    *coach.Coach
	speech   speech.Synthesizer
	suggest  *suggest.Synthesizer
	locks    keylock.Map
	intn     func(int) int
	log      *logger.Logger
}

// Option configures a Tutor.
type Option func(*Tutor)

// WithRules sets the badge catalog used to describe awards. It must match
// the catalog the ledger evaluates.
func WithRules(r badges.Rules) Option {
	return func(t *Tutor) { t.rules = r }
}

// WithCoach sets the conversation coach.
func WithCoach(c *coach.Coach) Option {
	return func(t *Tutor) { t.coach = c }
}

// WithSpeech sets the synthesizer used for spoken replies and prompts.
func WithSpeech(s speech.Synthesizer) Option {
	return func(t *Tutor) { t.speech = s }
}

// WithRand sets the source for content selection and scrambling. intn
// must return a value in [0, n).
func WithRand(intn func(int) int) Option {
	return func(t *Tutor) { t.intn = intn }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(t *Tutor) { t.log = log }
}

// New creates a Tutor.
func New(ledger *progress.Ledger, st *store.Store, bank *content.Bank, sessions session.Store, opts ...Option) *Tutor {
	t := &Tutor{
		ledger:   ledger,
		store:    st,
		rules:    badges.Default(),
		bank:     bank,
		sessions: sessions,
		speech:   speech.Unavailable{},
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.coach == nil {
		t.coach = coach.New(nil, t.log)
	}
	t.log = t.log.With("component", "tutor")
	t.suggest = suggest.NewSynthesizer(st.Repo(), ledger)
	return t
}

// Rules returns the badge catalog.
func (t *Tutor) Rules() badges.Rules {
	return t.rules
}

// CreateUser registers a learner. An empty id gets a random one.
func (t *Tutor) CreateUser(ctx context.Context, id, name string) (store.User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	return t.ledger.CreateUser(ctx, id, name)
}

// DeleteUser removes a learner and everything recorded for them.
func (t *Tutor) DeleteUser(ctx context.Context, id string) error {
	return t.ledger.DeleteUser(ctx, id)
}

// NewSession starts an empty session and returns its id.
func (t *Tutor) NewSession(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := t.sessions.Save(ctx, session.New(id)); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// withSession loads a session under its lock, runs fn and saves the state
// when fn succeeds.
func (t *Tutor) withSession(ctx context.Context, sessionID string, fn func(*session.State) error) error {
	unlock := t.locks.Lock(sessionID)
	defer unlock()

	st, err := t.sessions.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if err := fn(st); err != nil {
		return err
	}
	if err := t.sessions.Save(ctx, st); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// peekSession loads a copy of the session without taking its lock. Use it
// to read state before slow calls; writes go through withSession.
func (t *Tutor) peekSession(ctx context.Context, sessionID string) (*session.State, error) {
	st, err := t.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return st, nil
}

// speak renders text to audio. Audio is optional, so failures only log.
func (t *Tutor) speak(ctx context.Context, text string) string {
	if text == "" {
		return ""
	}
	audio, err := t.speech.Synthesize(ctx, text)
	if err != nil {
		if !errors.Is(err, speech.ErrUnavailable) {
			t.log.Warn("speech synthesis failed", "error", err)
		}
		return ""
	}
	return audio.URL
}
