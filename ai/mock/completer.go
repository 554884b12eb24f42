package mock

import "context"

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Response is returned.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// Response is the canned reply returned when CompleteFunc is nil.
	// Defaults to an empty matches object.
	Response string

	callCount int
	prompts   []string
}

// NewMockCompleter creates a mock completer that replies with an empty
// matches object unless configured otherwise.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{
		Response: `{"matches": {}}`,
	}
}

// Complete records the prompt and returns the configured response.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.prompts = append(m.prompts, prompt)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return m.Response, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	return m.callCount
}

// Prompts returns every prompt Complete received, in order.
func (m *MockCompleter) Prompts() []string {
	return m.prompts
}

// Reset clears recorded state and custom functions.
func (m *MockCompleter) Reset() {
	m.callCount = 0
	m.prompts = nil
	m.CompleteFunc = nil
	m.Response = `{"matches": {}}`
}
