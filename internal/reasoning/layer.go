package reasoning

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/martiendejong/Hazina-sub003/internal/llm"
	"github.com/martiendejong/Hazina-sub003/internal/logging"
)

// LayerType distinguishes the three reasoning tiers.
type LayerType string

const (
	LayerFast         LayerType = "fast"
	LayerDeep         LayerType = "deep"
	LayerVerification LayerType = "verification"
)

// Layer is one tier of reasoning backed by a single backend call, with its
// own cost/latency profile and validation rules.
//
// Reason never returns an error: a call-level failure is converted into a
// Result with IsValid=false and Confidence=0. Validate never returns an
// error either; concerns surface as Issues with severities.
type Layer interface {
	Name() string
	Type() LayerType
	// Tier is an informational cost/speed tag (e.g. "cheap", "expensive").
	Tier() string
	Reason(ctx context.Context, prompt string, rctx Context) Result
	Validate(ctx context.Context, result Result, rctx Context) Validation
}

type baseLayer struct {
	name       string
	layerType  LayerType
	tier       string
	client     llm.Client
	heuristics Heuristics
	logger     logging.Logger
}

func (b *baseLayer) Name() string    { return b.name }
func (b *baseLayer) Type() LayerType { return b.layerType }
func (b *baseLayer) Tier() string    { return b.tier }

// complete issues one backend call: context history, then the layer-specific
// system instruction, then the prompt. It records wall-clock duration and
// the backend's running cost delta.
func (b *baseLayer) complete(ctx context.Context, system, prompt string, rctx Context) (text string, durationMs int64, cost float64, err error) {
	messages := make([]llm.Message, 0, len(rctx.History)+2)
	messages = append(messages, rctx.History...)
	messages = append(messages,
		llm.Message{Role: llm.RoleSystem, Content: system},
		llm.Message{Role: llm.RoleUser, Content: prompt},
	)

	costBefore := reportedCost(b.client)
	started := time.Now()
	resp, err := b.client.Complete(ctx, llm.Request{Messages: messages})
	durationMs = time.Since(started).Milliseconds()
	cost = reportedCost(b.client) - costBefore

	if err != nil {
		b.logger.Warn("%s layer call failed after %dms: %v", b.name, durationMs, err)
		return "", durationMs, cost, err
	}
	return resp.Content, durationMs, cost, nil
}

// failed converts a call-level error into the Result shape callers expect.
func (b *baseLayer) failed(err error, durationMs int64, cost float64) Result {
	return Result{
		Confidence:       0,
		DurationMs:       durationMs,
		Provider:         b.client.Model(),
		Cost:             cost,
		IsValid:          false,
		ValidationIssues: []string{err.Error()},
	}
}

func reportedCost(client llm.Client) float64 {
	if reporter, ok := client.(llm.CostReporter); ok {
		return reporter.TotalCost()
	}
	return 0
}

// checkGroundTruth emits one issue per ground-truth key whose expected
// substring is absent from the response (case-insensitive). Keys are visited
// in sorted order so issue output is deterministic.
func checkGroundTruth(response string, rctx Context, severity float64) []Issue {
	if len(rctx.GroundTruth) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rctx.GroundTruth))
	for k := range rctx.GroundTruth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lower := strings.ToLower(response)
	var issues []Issue
	for _, key := range keys {
		expected := rctx.GroundTruth[key]
		if !strings.Contains(lower, strings.ToLower(expected)) {
			issues = append(issues, Issue{
				Type:        IssueGroundTruthMismatch,
				Description: fmt.Sprintf("response does not mention expected fact %q (%s)", expected, key),
				Severity:    severity,
				StepIndex:   -1,
			})
		}
	}
	return issues
}
