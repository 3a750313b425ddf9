package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAIClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req oaiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(req.Messages))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ANSWER: 42"}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 20, "completion_tokens": 4, "total_tokens": 24},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient("gpt-4o-mini", Config{APIKey: "test-key", BaseURL: server.URL})

	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "what is 6*7?"},
		},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "ANSWER: 42" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 24 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}

	reporter := client.(CostReporter)
	if reporter.TotalCost() <= 0 {
		t.Error("expected cumulative cost to increase after a call")
	}
}

func TestOpenAIClientReconstructsMissingUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "hello there"}, "finish_reason": "stop"},
			},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient("gpt-4o-mini", Config{BaseURL: server.URL})
	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Usage.TotalTokens == 0 {
		t.Error("expected usage to be reconstructed when the gateway omits it")
	}
}

func TestOpenAIClientHonorsTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewOpenAIClient("gpt-4o-mini", Config{
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	})

	started := time.Now()
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected timeout error from a stalled backend")
	}
	if elapsed := time.Since(started); elapsed > 5*time.Second {
		t.Errorf("timeout took %v, configured duration was not applied", elapsed)
	}
}

func TestOpenAIClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient("gpt-4o-mini", Config{BaseURL: server.URL})
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error on 429 status")
	}
}

func TestCalculateCost(t *testing.T) {
	cost := CalculateCost(1000, 1000, "gpt-4")
	if cost != 0.09 {
		t.Errorf("expected 0.09, got %v", cost)
	}
	if CalculateCost(0, 0, "unknown-model") != 0 {
		t.Error("zero tokens must cost zero")
	}
}

func TestEstimateFast(t *testing.T) {
	if EstimateFast("") != 0 {
		t.Error("empty text should estimate 0 tokens")
	}
	if EstimateFast("a") != 1 {
		t.Error("non-empty text should estimate at least 1 token")
	}
	if got := EstimateFast("one two three four"); got < 4 {
		t.Errorf("estimate should be at least the word count, got %d", got)
	}
}
