package reasoning

import (
	"context"
	"fmt"
	"strings"

	"github.com/martiendejong/Hazina-sub003/internal/llm"
	"github.com/martiendejong/Hazina-sub003/internal/logging"
)

// DeepLayer is the expensive second tier: a verbose prompt requesting
// explicit assumptions, evidence, and weaknesses, with stricter validation
// including the pairwise consistency scan.
type DeepLayer struct {
	baseLayer
}

var _ Layer = (*DeepLayer)(nil)

// NewDeepLayer builds the deep tier over the given backend.
func NewDeepLayer(client llm.Client, h Heuristics, logger logging.Logger) *DeepLayer {
	return &DeepLayer{baseLayer{
		name:       "deep",
		layerType:  LayerDeep,
		tier:       "expensive",
		client:     client,
		heuristics: h,
		logger:     logging.OrNop(logger),
	}}
}

func (l *DeepLayer) Reason(ctx context.Context, prompt string, rctx Context) Result {
	text, durationMs, cost, err := l.complete(ctx, withDomain(deepSystemPrompt, rctx), prompt, rctx)
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

func (l *DeepLayer) Validate(ctx context.Context, result Result, rctx Context) Validation {
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
	if len(result.ReasoningChain) < h.ShallowChainMin {
		issues = append(issues, Issue{
			Type:        IssueShallowReasoning,
			Description: fmt.Sprintf("reasoning chain has only %d steps", len(result.ReasoningChain)),
			Severity:    h.ShallowReasoningSeverity,
			StepIndex:   -1,
		})
	}
	if len(result.Assumptions) == 0 {
		issues = append(issues, Issue{
			Type:        IssueNoAssumptions,
			Description: "no assumptions were stated",
			Severity:    h.NoAssumptionsSeverity,
			StepIndex:   -1,
		})
	}
	if len(result.Evidence) == 0 {
		issues = append(issues, Issue{
			Type:        IssueNoEvidence,
			Description: "no supporting evidence was cited",
			Severity:    h.NoEvidenceSeverity,
			StepIndex:   -1,
		})
	}
	issues = append(issues, checkGroundTruth(result.Response, rctx, h.DeepGroundTruthSeverity)...)
	issues = append(issues, CheckConsistency(result.ReasoningChain, h)...)

	confidence := h.DeepCleanConfidence
	if len(issues) > 0 {
		confidence = h.DeepIssueConfidence
	}

	return Validation{
		IsValid:     !h.hasBlocking(issues),
		Confidence:  confidence,
		Issues:      issues,
		Suggestions: SuggestionsFor(issues),
	}
}
