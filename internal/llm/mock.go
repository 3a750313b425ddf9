package llm

import (
	"context"
	"sync"
)

// MockClient implements Client and CostReporter for tests. Behavior is
// overridden per test through the Func fields; the zero value returns a
// canned response at zero cost.
type MockClient struct {
	CompleteFunc func(ctx context.Context, req Request) (*Response, error)
	ModelName    string

	mu    sync.Mutex
	cost  float64
	calls int
}

var (
	_ Client       = (*MockClient)(nil)
	_ CostReporter = (*MockClient)(nil)
)

func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &Response{
		Content:    "mock response",
		StopReason: "stop",
		Usage:      TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (m *MockClient) Model() string {
	if m.ModelName != "" {
		return m.ModelName
	}
	return "mock-model"
}

func (m *MockClient) TotalCost() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cost
}

// AddCost advances the reported cumulative cost; tests call it from
// CompleteFunc to simulate per-call spend.
func (m *MockClient) AddCost(delta float64) {
	m.mu.Lock()
	m.cost += delta
	m.mu.Unlock()
}

// Calls reports how many times Complete was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
