package reasoning

import (
	"context"
	"strings"
	"testing"

	"github.com/martiendejong/Hazina-sub003/internal/llm"
	"github.com/martiendejong/Hazina-sub003/internal/logging"
)

func resolve(t *testing.T, critic llm.Client, results []Result, rctx Context) CrossValidation {
	t.Helper()
	return resolveConsensus(context.Background(), critic, results, rctx, DefaultHeuristics(), logging.Nop())
}

func TestConsensusUnanimity(t *testing.T) {
	results := []Result{
		{Response: "Paris", Confidence: 0.9, ReasoningChain: []string{"a", "b"}, Provider: "fast", IsValid: true},
		{Response: " paris ", Confidence: 0.8, ReasoningChain: []string{"a", "b"}, Provider: "deep", IsValid: true},
		{Response: "PARIS", Confidence: 0.85, ReasoningChain: []string{"a", "b"}, Provider: "verify", IsValid: true},
	}
	cross := resolve(t, nil, results, NewContext())

	if !cross.IsValid {
		t.Errorf("unanimous set must be valid: %v", cross.Issues)
	}
	for _, issue := range cross.Issues {
		if issue.Type == IssueNoConsensus || issue.Type == IssuePartialConsensus {
			t.Errorf("unexpected consensus issue: %v", issue)
		}
	}
	if cross.ConsensusAnswer != "Paris" {
		t.Errorf("consensus answer = %q, want the most confident member's literal response", cross.ConsensusAnswer)
	}
	approx(t, cross.Confidence, (0.9+0.8+0.85)/3, "mean confidence")
	if len(cross.Agreements) == 0 {
		t.Error("expected an agreement summary")
	}
}

func TestConsensusTotalDisagreement(t *testing.T) {
	results := []Result{
		{Response: "Paris", Confidence: 0.9, ReasoningChain: []string{"a"}, Provider: "fast", IsValid: true},
		{Response: "Lyon", Confidence: 0.95, ReasoningChain: []string{"a"}, Provider: "deep", IsValid: true},
		{Response: "Nice", Confidence: 0.99, ReasoningChain: []string{"a"}, Provider: "verify", IsValid: true},
	}
	cross := resolve(t, nil, results, NewContext())

	var noConsensus *Issue
	for i := range cross.Issues {
		if cross.Issues[i].Type == IssueNoConsensus {
			noConsensus = &cross.Issues[i]
		}
	}
	if noConsensus == nil {
		t.Fatalf("missing NoConsensus issue: %v", cross.Issues)
	}
	approx(t, noConsensus.Severity, 0.9, "no-consensus severity")
	if cross.IsValid {
		t.Error("no-consensus at 0.9 must block")
	}
	// Documented fallback: the first layer's response, not the most
	// confident one.
	if cross.ConsensusAnswer != "Paris" {
		t.Errorf("consensus answer = %q, want first layer's response", cross.ConsensusAnswer)
	}
	if len(cross.Disagreements) == 0 {
		t.Error("expected disagreement summaries")
	}
}

func TestConsensusMajority(t *testing.T) {
	results := []Result{
		{Response: "Paris", Confidence: 0.7, ReasoningChain: []string{"a", "b"}, Provider: "fast", IsValid: true},
		{Response: "paris", Confidence: 0.9, ReasoningChain: []string{"a", "b"}, Provider: "deep", IsValid: true},
		{Response: "Lyon", Confidence: 0.99, ReasoningChain: []string{"a", "b"}, Provider: "verify", IsValid: true},
	}
	rctx := NewContext()
	rctx.MinConfidence = 0.5
	cross := resolve(t, nil, results, rctx)

	var partial *Issue
	for i := range cross.Issues {
		if cross.Issues[i].Type == IssuePartialConsensus {
			partial = &cross.Issues[i]
		}
	}
	if partial == nil {
		t.Fatalf("missing PartialConsensus issue: %v", cross.Issues)
	}
	approx(t, partial.Severity, 0.5, "partial-consensus severity")
	if !strings.Contains(partial.Description, "1 of 3") {
		t.Errorf("description should size the minority: %q", partial.Description)
	}
	// The majority wins even though the dissenter is the most confident
	// individual; within the majority the most confident member's literal
	// text is used.
	if cross.ConsensusAnswer != "paris" {
		t.Errorf("consensus answer = %q, want most confident majority member", cross.ConsensusAnswer)
	}
	if !cross.IsValid {
		t.Error("partial consensus at 0.5 is advisory")
	}
}

func TestConsensusLowConfidenceFlag(t *testing.T) {
	results := []Result{
		{Response: "A", Confidence: 0.5, ReasoningChain: []string{"a"}, IsValid: true},
		{Response: "A", Confidence: 0.9, ReasoningChain: []string{"a"}, IsValid: true},
	}
	cross := resolve(t, nil, results, NewContext())
	for _, issue := range cross.Issues {
		if issue.Type == IssueLowConfidence {
			approx(t, issue.Severity, 0.6, "consensus low-confidence severity")
			return
		}
	}
	t.Fatalf("missing LowConfidence issue: %v", cross.Issues)
}

func TestConsensusDepthVariance(t *testing.T) {
	results := []Result{
		{Response: "A", Confidence: 0.9, ReasoningChain: []string{"a", "b", "c", "d", "e", "f"}, IsValid: true},
		{Response: "A", Confidence: 0.9, ReasoningChain: []string{"a"}, IsValid: true},
	}
	cross := resolve(t, nil, results, NewContext())
	for _, issue := range cross.Issues {
		if issue.Type == IssueReasoningDepthVariance {
			approx(t, issue.Severity, 0.4, "depth variance severity")
			return
		}
	}
	t.Fatalf("missing ReasoningDepthVariance issue: %v", cross.Issues)
}

func TestConsensusMergesCritiqueIssues(t *testing.T) {
	critic := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return &llm.Response{Content: "VALID: no\nISSUES:\n- both answers ignore the edge case"}, nil
		},
	}
	results := []Result{
		{Response: "A", Confidence: 0.9, ReasoningChain: []string{"a"}, IsValid: true},
		{Response: "A", Confidence: 0.9, ReasoningChain: []string{"a"}, IsValid: true},
	}
	cross := resolve(t, critic, results, NewContext())

	found := false
	for _, issue := range cross.Issues {
		if issue.Type == IssueCrossValidation && issue.Severity == 0.8 {
			found = true
		}
	}
	if !found {
		t.Errorf("critique issues not merged: %v", cross.Issues)
	}
	if cross.IsValid {
		t.Error("blocking critique issue must invalidate the set")
	}
}

func TestConsensusCritiqueFailureIsNonFatal(t *testing.T) {
	critic := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return nil, context.DeadlineExceeded
		},
	}
	results := []Result{
		{Response: "A", Confidence: 0.9, ReasoningChain: []string{"a"}, IsValid: true},
		{Response: "A", Confidence: 0.9, ReasoningChain: []string{"a"}, IsValid: true},
	}
	cross := resolve(t, critic, results, NewContext())
	if !cross.IsValid {
		t.Errorf("critique failure must not invalidate: %v", cross.Issues)
	}
	if cross.ConsensusAnswer != "A" {
		t.Errorf("consensus answer = %q", cross.ConsensusAnswer)
	}
}

func TestConsensusEmptyInput(t *testing.T) {
	cross := resolve(t, nil, nil, NewContext())
	if cross.IsValid || cross.ConsensusAnswer != "" {
		t.Errorf("empty input should be invalid with empty answer: %+v", cross)
	}
}
