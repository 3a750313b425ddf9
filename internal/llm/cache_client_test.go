package llm

import (
	"context"
	"testing"
)

func TestCachingClientMemoizesByMessages(t *testing.T) {
	mock := &MockClient{
		CompleteFunc: func(ctx context.Context, req Request) (*Response, error) {
			return &Response{Content: "answer for " + req.Messages[0].Content}, nil
		},
	}

	client, err := NewCachingClient(mock, 8)
	if err != nil {
		t.Fatalf("NewCachingClient: %v", err)
	}

	req := Request{Messages: []Message{{Role: RoleUser, Content: "q1"}}}
	first, err := client.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	second, err := client.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if first.Content != second.Content {
		t.Error("cached response differs from original")
	}
	if mock.Calls() != 1 {
		t.Errorf("expected 1 upstream call, got %d", mock.Calls())
	}

	other := Request{Messages: []Message{{Role: RoleUser, Content: "q2"}}}
	if _, err := client.Complete(context.Background(), other); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if mock.Calls() != 2 {
		t.Errorf("different messages must miss the cache, got %d calls", mock.Calls())
	}
}

func TestCachingClientDisabledWhenSizeZero(t *testing.T) {
	mock := &MockClient{}
	client, err := NewCachingClient(mock, 0)
	if err != nil {
		t.Fatalf("NewCachingClient: %v", err)
	}
	if client != Client(mock) {
		t.Error("size 0 should return the underlying client unchanged")
	}
}

func TestCacheKeyDependsOnParameters(t *testing.T) {
	base := Request{Messages: []Message{{Role: RoleUser, Content: "q"}}}
	warm := base
	warm.Temperature = 0.9
	if cacheKey("m", base) == cacheKey("m", warm) {
		t.Error("temperature must participate in the cache key")
	}
	if cacheKey("m1", base) == cacheKey("m2", base) {
		t.Error("model must participate in the cache key")
	}
}
