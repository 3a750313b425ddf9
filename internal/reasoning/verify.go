package reasoning

import (
	"context"
	"fmt"

	"github.com/martiendejong/Hazina-sub003/internal/llm"
	"github.com/martiendejong/Hazina-sub003/internal/logging"
)

// VerificationLayer is the last tier. Its primary role is Validate: it sends
// a candidate result back to a backend with a critique instruction and
// parses the VALID:/CONFIDENCE:/ISSUES:/SUGGESTIONS: reply. When registered
// in the escalation chain it can also Reason, re-deriving the answer
// independently. CrossValidate reconciles the full set of layer results.
type VerificationLayer struct {
	baseLayer
}

var _ Layer = (*VerificationLayer)(nil)

// NewVerificationLayer builds the verification tier over the given backend.
func NewVerificationLayer(client llm.Client, h Heuristics, logger logging.Logger) *VerificationLayer {
	return &VerificationLayer{baseLayer{
		name:       "verification",
		layerType:  LayerVerification,
		tier:       "expensive",
		client:     client,
		heuristics: h,
		logger:     logging.OrNop(logger),
	}}
}

func (l *VerificationLayer) Reason(ctx context.Context, prompt string, rctx Context) Result {
	text, durationMs, cost, err := l.complete(ctx, withDomain(verifySystemPrompt, rctx), prompt, rctx)
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

// Validate critiques the candidate result with one backend call. A failure
// of the critique call does not block the request; it degrades to an
// advisory issue so escalation can continue.
func (l *VerificationLayer) Validate(ctx context.Context, result Result, rctx Context) Validation {
	h := l.heuristics

	text, _, _, err := l.complete(ctx, withDomain("You are a critical reviewer of reasoning output.", rctx), critiquePrompt(result), rctx)
	if err != nil {
		issue := Issue{
			Type:        IssueCrossValidation,
			Description: fmt.Sprintf("verification call failed: %v", err),
			Severity:    0.5,
			StepIndex:   -1,
		}
		return Validation{
			IsValid:     true,
			Confidence:  h.FastIssueConfidence,
			Issues:      []Issue{issue},
			Suggestions: SuggestionsFor([]Issue{issue}),
		}
	}

	critique := ParseCritique(text)
	severity := h.CritiqueAcceptSeverity
	if critique.HasValid && !critique.Valid {
		severity = h.CritiqueRejectSeverity
	}

	var issues []Issue
	for _, description := range critique.Issues {
		issues = append(issues, Issue{
			Type:        IssueCrossValidation,
			Description: description,
			Severity:    severity,
			StepIndex:   -1,
		})
	}
	if critique.HasValid && !critique.Valid && len(issues) == 0 {
		issues = append(issues, Issue{
			Type:        IssueCrossValidation,
			Description: "verifier rejected the result without naming specific issues",
			Severity:    severity,
			StepIndex:   -1,
		})
	}

	confidence := result.Confidence
	if critique.HasConfidence {
		confidence = critique.Confidence
	} else if critique.HasValid && !critique.Valid {
		confidence = h.CritiqueRejectedConfidence
	}

	suggestions := critique.Suggestions
	if len(suggestions) == 0 {
		suggestions = SuggestionsFor(issues)
	}

	return Validation{
		IsValid:     !h.hasBlocking(issues),
		Confidence:  clamp01(confidence),
		Issues:      issues,
		Suggestions: suggestions,
	}
}

// CrossValidate reconciles the results every layer produced for one request.
func (l *VerificationLayer) CrossValidate(ctx context.Context, results []Result, rctx Context) CrossValidation {
	return resolveConsensus(ctx, l.client, results, rctx, l.heuristics, l.logger)
}
