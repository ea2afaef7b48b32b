// Package llm wraps the hosted text generators the coach talks to behind a
// single Provider interface, with retry and request logging middleware.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider generates one coach reply per call.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider sends requests to.
	ModelID() string
}

// Request is a single prompt. Coach turns fold the transcript into one
// user message, so Messages is usually of length one.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64 // zero leaves the provider default
}

// Message is one entry of the conversation sent to the provider.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Stop says why the provider stopped generating.
type Stop string

const (
	StopEnd      Stop = "end"
	StopLength   Stop = "max_tokens"
	StopFiltered Stop = "filtered"
)

// Response is the generated reply.
type Response struct {
	Content string
	Usage   Usage
	Model   string
	Stop    Stop
}

// Text returns Content with surrounding whitespace removed.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// accept turns a raw provider reply into a Response. A reply cut short
// still counts as long as some text came back; the labeled-field parser
// copes with a missing tail. Filtered or empty replies are errors.
func accept(provider, content, model string, stop Stop, usage Usage) (*Response, error) {
	switch {
	case stop == StopFiltered:
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("%s reply blocked by content filter", provider)}
	case strings.TrimSpace(content) == "" && stop == StopLength:
		return nil, &ErrMaxTokensExceeded{Partial: content}
	case strings.TrimSpace(content) == "":
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty %s reply", provider)}
	}
	return &Response{Content: content, Usage: usage, Model: model, Stop: stop}, nil
}

// resolveModel maps a friendly model name to a provider model ID. Names
// not in the table are sent as is.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
