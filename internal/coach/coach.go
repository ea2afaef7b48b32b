// Package coach holds the spoken-English conversation partner: it asks a
// text generator to correct what the child said, praise them and keep the
// talk going, and parses the labeled reply.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/talkie/internal/llm"
	"github.com/abhisek/talkie/internal/logger"
	"github.com/abhisek/talkie/internal/mode"
)

// ErrUnavailable is returned by lookups that have no offline answer when
// no generator is configured or the generator failed.
var ErrUnavailable = errors.New("coach: text generator unavailable")

// ErrEmptyInput is returned when the child said nothing.
var ErrEmptyInput = errors.New("coach: nothing to reply to")

// Field labels the generator is asked to answer with.
const (
	FieldCorrect  = "CORRECT"
	FieldPraise   = "PRAISE"
	FieldQuestion = "QUESTION"
	FieldMeaning  = "MEANING"
	FieldExample  = "EXAMPLE"
	FieldSentence = "SENTENCE"
)

const (
	replyTokens = 200
	temperature = 0.3
)

// Reply is one coach turn.
type Reply struct {
	Correct  string `json:"correct"`
	Praise   string `json:"praise"`
	Question string `json:"question"`
	// Text is what gets spoken back.
	Text string `json:"reply"`
	// Fallback is set when the reply is canned because the generator
	// was missing or failed.
	Fallback bool `json:"fallback"`
}

// Meaning explains a word.
type Meaning struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Example string `json:"example"`
}

// Coach talks to a Provider. A nil provider is allowed: replies fall back
// to canned encouragement and lookups return ErrUnavailable.
type Coach struct {
	provider llm.Provider
	log      *logger.Logger
}

// New returns a Coach.
func New(p llm.Provider, log *logger.Logger) *Coach {
	if log == nil {
		log = logger.Nop()
	}
	return &Coach{provider: p, log: log.With("component", "coach")}
}

// Available reports whether a generator is configured.
func (c *Coach) Available() bool {
	return c.provider != nil
}

// Reply answers the child in free conversation. transcript is the recent
// dialogue kept by the session.
func (c *Coach) Reply(ctx context.Context, transcript, childText string) (Reply, error) {
	childText = strings.TrimSpace(childText)
	if childText == "" {
		return Reply{}, ErrEmptyInput
	}
	prompt := fmt.Sprintf(conversationPrompt, orNone(transcript), childText)
	return c.turn(llm.WithPurpose(ctx, llm.PurposeCoach), prompt, childText), nil
}

// Roleplay answers the child's line inside a scene.
func (c *Coach) Roleplay(ctx context.Context, scenario, question, answer string) (Reply, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Reply{}, ErrEmptyInput
	}
	prompt := fmt.Sprintf(roleplayPrompt, orNone(scenario), orNone(question), answer)
	return c.turn(llm.WithPurpose(ctx, llm.PurposeRoleplay), prompt, answer), nil
}

// Define explains a word in child-friendly English.
func (c *Coach) Define(ctx context.Context, word string) (Meaning, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Meaning{}, ErrEmptyInput
	}
	text, err := c.generate(llm.WithPurpose(ctx, llm.PurposeMeaning), fmt.Sprintf(meaningPrompt, word))
	if err != nil {
		return Meaning{}, err
	}
	f := ParseFields(text, FieldMeaning, FieldExample)
	if f[FieldMeaning] == "" {
		return Meaning{}, fmt.Errorf("%w: no meaning for %q", ErrUnavailable, word)
	}
	return Meaning{Word: word, Meaning: f[FieldMeaning], Example: f[FieldExample]}, nil
}

// Sentence writes a new sentence to repeat at the given difficulty.
func (c *Coach) Sentence(ctx context.Context, d mode.Difficulty) (string, error) {
	text, err := c.generate(llm.WithPurpose(ctx, llm.PurposeSentence), fmt.Sprintf(sentencePrompt, sentenceLength(d)))
	if err != nil {
		return "", err
	}
	s := ParseFields(text, FieldSentence)[FieldSentence]
	if s == "" {
		return "", fmt.Errorf("%w: no sentence in reply", ErrUnavailable)
	}
	return s, nil
}

func (c *Coach) turn(ctx context.Context, prompt, said string) Reply {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return fallbackReply(said)
	}

	f := ParseFields(text, FieldCorrect, FieldPraise, FieldQuestion)
	r := Reply{Correct: f[FieldCorrect], Praise: f[FieldPraise], Question: f[FieldQuestion]}
	r.Text = Compose(r.Correct, r.Praise, r.Question)
	if r.Text == "" {
		// The generator ignored the format; speak whatever it said.
		r.Text = strings.Join(strings.Fields(text), " ")
	}
	return r
}

func (c *Coach) generate(ctx context.Context, prompt string) (string, error) {
	if c.provider == nil {
		return "", ErrUnavailable
	}
	resp, err := c.provider.Generate(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   replyTokens,
		Temperature: temperature,
	})
	if err != nil {
		c.log.Warn("generation failed", "purpose", llm.PurposeFrom(ctx), "error", err)
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", ErrUnavailable)
	}
	return text, nil
}

func fallbackReply(said string) Reply {
	r := Reply{
		Correct:  said,
		Praise:   "Good try!",
		Question: "Can you tell me more?",
		Fallback: true,
	}
	r.Text = Compose(r.Correct, r.Praise, r.Question)
	return r
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none yet)"
	}
	return s
}

func sentenceLength(d mode.Difficulty) string {
	switch d {
	case mode.Hard:
		return "12 to 16 words"
	case mode.Medium:
		return "8 to 11 words"
	default:
		return "4 to 7 words"
	}
}
