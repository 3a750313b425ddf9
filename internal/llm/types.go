// Package llm provides the backend-calling collaborator consumed by the
// reasoning engine: a provider-agnostic completion contract, an
// OpenAI-compatible HTTP client, and wrappers for retries and caching.
package llm

import "context"

// Message roles used throughout the engine.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents one role-tagged conversation entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request contains all parameters for a completion call.
type Request struct {
	Messages    []Message      `json:"messages"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Response is the backend's reply.
type Response struct {
	Content    string     `json:"content"`
	StopReason string     `json:"stop_reason"`
	Usage      TokenUsage `json:"usage"`
}

// TokenUsage tracks token consumption for one call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Client represents any completion backend.
type Client interface {
	// Complete sends messages and returns a response (non-streaming).
	Complete(ctx context.Context, req Request) (*Response, error)

	// Model returns the model identifier.
	Model() string
}

// CostReporter exposes the cumulative monetary cost a client has accrued.
// The total is monotonically non-decreasing and safe to read concurrently;
// callers compute per-call deltas by reading it before and after a call.
type CostReporter interface {
	TotalCost() float64
}
