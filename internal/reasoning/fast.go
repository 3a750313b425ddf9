package reasoning

import (
	"context"
	"fmt"
	"strings"

	"github.com/martiendejong/Hazina-sub003/internal/llm"
	"github.com/martiendejong/Hazina-sub003/internal/logging"
)

// FastLayer is the cheap first tier: a lightweight prompt asking for brief
// reasoning steps. When the backend omits CONFIDENCE:, the heuristic
// estimator fills in.
type FastLayer struct {
	baseLayer
}

var _ Layer = (*FastLayer)(nil)

// NewFastLayer builds the fast tier over the given backend.
func NewFastLayer(client llm.Client, h Heuristics, logger logging.Logger) *FastLayer {
	return &FastLayer{baseLayer{
		name:       "fast",
		layerType:  LayerFast,
		tier:       "cheap",
		client:     client,
		heuristics: h,
		logger:     logging.OrNop(logger),
	}}
}

func (l *FastLayer) Reason(ctx context.Context, prompt string, rctx Context) Result {
	text, durationMs, cost, err := l.complete(ctx, withDomain(fastSystemPrompt, rctx), prompt, rctx)
	if err != nil {
		return l.failed(err, durationMs, cost)
	}

	parsed := ParseStructured(text)
	confidence := parsed.Confidence
	if !parsed.HasConfidence {
		confidence = EstimateConfidence(parsed.Answer, parsed.Chain, l.heuristics)
	}

	return Result{
		Response:       parsed.Answer,
		Confidence:     clamp01(confidence),
		ReasoningChain: parsed.Chain,
		Evidence:       parsed.Evidence,
		Assumptions:    parsed.Assumptions,
		Weaknesses:     parsed.Weaknesses,
		DurationMs:     durationMs,
		Provider:       l.client.Model(),
		Cost:           cost,
		IsValid:        true,
	}
}

func (l *FastLayer) Validate(ctx context.Context, result Result, rctx Context) Validation {
	h := l.heuristics
	var issues []Issue

	if result.Confidence < rctx.MinConfidence {
		issues = append(issues, Issue{
			Type:        IssueLowConfidence,
			Description: fmt.Sprintf("confidence %.2f is below the required %.2f", result.Confidence, rctx.MinConfidence),
			Severity:    h.FastLowConfidenceSeverity,
			StepIndex:   -1,
		})
	}
	if strings.TrimSpace(result.Response) == "" {
		issues = append(issues, Issue{
			Type:        IssueEmptyResponse,
			Description: "the layer produced no answer text",
			Severity:    h.EmptyResponseSeverity,
			StepIndex:   -1,
		})
	}
	issues = append(issues, checkGroundTruth(result.Response, rctx, h.FastGroundTruthSeverity)...)

	confidence := h.FastCleanConfidence
	if len(issues) > 0 {
		confidence = h.FastIssueConfidence
	}

	return Validation{
		IsValid:     !h.hasBlocking(issues),
		Confidence:  confidence,
		Issues:      issues,
		Suggestions: SuggestionsFor(issues),
	}
}
