package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockProvider is an in-memory Provider implementation for testing.
// Responses are keyed by a lowercase substring of the last user message.
type MockProvider struct {
	mu        sync.Mutex
	responses map[string]string
	fallback  string
	err       error
	requests  []*ChatRequest
}

// NewMockProvider creates a mock provider for testing.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		responses: make(map[string]string),
		fallback:  "ok",
	}
}

// WithResponse maps a message substring to a canned response.
func (m *MockProvider) WithResponse(substr, response string) *MockProvider {
	m.responses[strings.ToLower(substr)] = response
	return m
}

// WithFallback sets the response returned when no mapping matches.
func (m *MockProvider) WithFallback(response string) *MockProvider {
	m.fallback = response
	return m
}

// WithError makes every Chat call fail with err.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.err = err
	return m
}

// Chat implements Provider.
func (m *MockProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}

	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			last = strings.ToLower(req.Messages[i].Content)
			break
		}
	}

	for key, response := range m.responses {
		if strings.Contains(last, key) {
			return &ChatResponse{Content: response, Model: "mock"}, nil
		}
	}

	return &ChatResponse{Content: m.fallback, Model: "mock"}, nil
}

// Name implements Provider.
func (m *MockProvider) Name() string { return "mock" }

// Available implements Provider.
func (m *MockProvider) Available() bool { return true }

// Requests returns the requests seen so far, oldest first.
func (m *MockProvider) Requests() []*ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or an error if none were made.
func (m *MockProvider) LastRequest() (*ChatRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil, fmt.Errorf("no requests recorded")
	}
	return m.requests[len(m.requests)-1], nil
}
