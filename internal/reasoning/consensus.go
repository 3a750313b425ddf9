package reasoning

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/martiendejong/Hazina-sub003/internal/llm"
	"github.com/martiendejong/Hazina-sub003/internal/logging"
)

// resolveConsensus reconciles independent layer results into one cross
// validation outcome: answer grouping and majority vote, aggregate
// confidence, depth-variance detection, and one optional backend critique
// over the whole set. The consensus answer is always a literal Response from
// the inputs, never a synthesized string.
func resolveConsensus(ctx context.Context, critic llm.Client, results []Result, rctx Context, h Heuristics, logger logging.Logger) CrossValidation {
	logger = logging.OrNop(logger)
	cross := CrossValidation{LayerResults: results}
	if len(results) == 0 {
		cross.IsValid = false
		return cross
	}

	groups := groupByNormalizedAnswer(results)

	switch {
	case len(groups) == 1:
		cross.Agreements = append(cross.Agreements,
			fmt.Sprintf("all %d layers agree: %s", len(results), results[groups[0].members[0]].Response))
	case len(groups) == len(results):
		cross.Issues = append(cross.Issues, Issue{
			Type:        IssueNoConsensus,
			Description: fmt.Sprintf("all %d layers produced distinct answers", len(results)),
			Severity:    h.NoConsensusSeverity,
			StepIndex:   -1,
		})
		cross.Disagreements = append(cross.Disagreements, describeDisagreements(results, groups)...)
	default:
		majority := groups[0]
		minority := len(results) - len(majority.members)
		cross.Issues = append(cross.Issues, Issue{
			Type:        IssuePartialConsensus,
			Description: fmt.Sprintf("%d of %d layers dissent from the majority answer", minority, len(results)),
			Severity:    h.PartialConsensusSeverity,
			StepIndex:   -1,
		})
		cross.Agreements = append(cross.Agreements,
			fmt.Sprintf("%d layers agree: %s", len(majority.members), results[majority.members[0]].Response))
		cross.Disagreements = append(cross.Disagreements, describeDisagreements(results, groups)...)
	}

	// Aggregate confidence: arithmetic mean, with a flag when any single
	// layer fell below the caller's bar.
	var sum float64
	minConfidence := results[0].Confidence
	for _, r := range results {
		sum += r.Confidence
		if r.Confidence < minConfidence {
			minConfidence = r.Confidence
		}
	}
	cross.Confidence = clamp01(sum / float64(len(results)))
	if minConfidence < rctx.MinConfidence {
		cross.Issues = append(cross.Issues, Issue{
			Type:        IssueLowConfidence,
			Description: fmt.Sprintf("lowest layer confidence %.2f is below the required %.2f", minConfidence, rctx.MinConfidence),
			Severity:    h.ConsensusLowConfidenceSeverity,
			StepIndex:   -1,
		})
	}

	// Depth variance: a chain far shorter than the average suggests one
	// layer barely engaged with the problem.
	var totalSteps int
	minSteps := len(results[0].ReasoningChain)
	for _, r := range results {
		steps := len(r.ReasoningChain)
		totalSteps += steps
		if steps < minSteps {
			minSteps = steps
		}
	}
	meanSteps := float64(totalSteps) / float64(len(results))
	if float64(minSteps) < meanSteps/2 {
		cross.Issues = append(cross.Issues, Issue{
			Type:        IssueReasoningDepthVariance,
			Description: fmt.Sprintf("shortest reasoning chain (%d steps) is less than half the mean (%.1f)", minSteps, meanSteps),
			Severity:    h.DepthVarianceSeverity,
			StepIndex:   -1,
		})
	}

	// One extra backend call critiques the whole set for inconsistencies
	// the numeric heuristics cannot see. Its failure is logged, not fatal.
	if critic != nil && len(results) > 1 {
		if issues := critiqueResultSet(ctx, critic, results, h, logger); len(issues) > 0 {
			cross.Issues = append(cross.Issues, issues...)
		}
	}

	cross.ConsensusAnswer = consensusAnswer(results, groups)
	cross.IsValid = !h.hasBlocking(cross.Issues)
	return cross
}

// answerGroup collects result indices sharing one normalized answer.
type answerGroup struct {
	normalized string
	members    []int
}

func (g answerGroup) meanConfidence(results []Result) float64 {
	var sum float64
	for _, idx := range g.members {
		sum += results[idx].Confidence
	}
	return sum / float64(len(g.members))
}

// groupByNormalizedAnswer groups results by trimmed, lowercased Response and
// sorts groups largest first. Ties are broken by highest mean confidence
// within the tied group, then by first appearance for determinism.
func groupByNormalizedAnswer(results []Result) []answerGroup {
	index := make(map[string]int)
	var groups []answerGroup
	for i, r := range results {
		normalized := strings.ToLower(strings.TrimSpace(r.Response))
		if at, ok := index[normalized]; ok {
			groups[at].members = append(groups[at].members, i)
			continue
		}
		index[normalized] = len(groups)
		groups = append(groups, answerGroup{normalized: normalized, members: []int{i}})
	}

	sort.SliceStable(groups, func(a, b int) bool {
		if len(groups[a].members) != len(groups[b].members) {
			return len(groups[a].members) > len(groups[b].members)
		}
		return groups[a].meanConfidence(results) > groups[b].meanConfidence(results)
	})
	return groups
}

// consensusAnswer picks the representative answer: the most confident member
// of the largest group, or the first layer's response when every group has
// size 1. The latter is the documented no-agreement default, not a guess at
// correctness.
func consensusAnswer(results []Result, groups []answerGroup) string {
	if len(groups) == 0 {
		return ""
	}
	if len(groups) == len(results) && len(results) > 1 {
		return results[0].Response
	}
	best := groups[0].members[0]
	for _, idx := range groups[0].members[1:] {
		if results[idx].Confidence > results[best].Confidence {
			best = idx
		}
	}
	return results[best].Response
}

// describeDisagreements renders human-readable summaries of how the top
// answers diverge, using an edit-distance measure between the two largest
// groups' representatives.
func describeDisagreements(results []Result, groups []answerGroup) []string {
	var out []string
	for _, g := range groups[1:] {
		r := results[g.members[0]]
		out = append(out, fmt.Sprintf("%s answered: %s", r.Provider, r.Response))
	}
	if len(groups) >= 2 {
		a := results[groups[0].members[0]].Response
		b := results[groups[1].members[0]].Response
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(a, b, false)
		out = append(out, fmt.Sprintf("top answers diverge by %d edits", dmp.DiffLevenshtein(diffs)))
	}
	return out
}

// critiqueResultSet issues the resolver's one extra backend call and maps
// the critique reply into issues.
func critiqueResultSet(ctx context.Context, critic llm.Client, results []Result, h Heuristics, logger logging.Logger) []Issue {
	resp, err := critic.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a critical reviewer of reasoning output."},
			{Role: llm.RoleUser, Content: crossCritiquePrompt(results)},
		},
	})
	if err != nil {
		logger.Warn("consensus critique call failed: %v", err)
		return nil
	}

	critique := ParseCritique(resp.Content)
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
	return issues
}
