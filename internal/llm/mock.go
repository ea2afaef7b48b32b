package llm

import (
	"context"
	"sync"
)

// MockResponse is one canned reply.
type MockResponse struct {
	Text  string
	Usage Usage
	Err   error
}

// TextResponse is a successful canned reply.
func TextResponse(text string) MockResponse {
	return MockResponse{Text: text}
}

// MockProvider replays canned replies in order and records every request.
// With the queue drained it answers with Fallback, or fails with
// ErrProviderUnavailable when Fallback is nil.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
	Fallback  *MockResponse
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	var next MockResponse
	switch {
	case len(m.responses) > 0:
		next, m.responses = m.responses[0], m.responses[1:]
	case m.Fallback != nil:
		next = *m.Fallback
	default:
		return nil, &ErrProviderUnavailable{}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Text, Usage: next.Usage, Model: "mock", Stop: StopEnd}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// Queue appends canned replies.
func (m *MockProvider) Queue(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent request.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Request{}, false
	}
	return m.calls[len(m.calls)-1], true
}
