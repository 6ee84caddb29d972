package llm

import (
	"context"
	"sync"
)

const mockDefaultResponse = "EXPLANATION: These terms are commonly associated with one gender and may discourage some qualified candidates from applying.\n" +
	"ALTERNATIVE: Describe the skills, behaviours and outcomes the role needs instead of personality labels."

// MockClient returns deterministic responses for local runs and tests.
type MockClient struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	last     Request
}

// NewMockClient creates a mock client. An empty response selects a
// well-formed default.
func NewMockClient(response string) *MockClient {
	if response == "" {
		response = mockDefaultResponse
	}
	return &MockClient{response: response}
}

// NewFailingMockClient creates a mock client whose calls always fail with err.
func NewFailingMockClient(err error) *MockClient {
	return &MockClient{err: err}
}

// Name returns the provider identifier.
func (m *MockClient) Name() string {
	return ProviderMock
}

// Complete records the request and returns the canned response or error.
func (m *MockClient) Complete(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.last = req
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// Calls returns how many times Complete was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request.
func (m *MockClient) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
