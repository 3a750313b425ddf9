// Package reasoning implements confidence-gated reasoning over a prompt:
// structured-output parsing, per-layer validation heuristics, escalation
// across backends of increasing depth, and consensus across their answers.
package reasoning

import (
	"github.com/martiendejong/Hazina-sub003/internal/llm"
)

// Context carries the caller-supplied parameters for one reasoning request.
// It is immutable for the lifetime of the request.
type Context struct {
	// History is the ordered conversation preceding the prompt.
	History []llm.Message `json:"history,omitempty"`

	// MinConfidence is the confidence bar a layer must clear for the
	// orchestrator to stop escalating. Range [0,1].
	MinConfidence float64 `json:"min_confidence"`

	// Domain is a free-text hint forwarded to backends.
	Domain string `json:"domain,omitempty"`

	// MaxSteps bounds how many layers may run; 0 means unbounded.
	MaxSteps int `json:"max_steps,omitempty"`

	// GroundTruth maps fact names to substrings the final answer must
	// contain (case-insensitive).
	GroundTruth map[string]string `json:"ground_truth,omitempty"`
}

// NewContext returns a Context with the default confidence bar.
func NewContext() Context {
	return Context{MinConfidence: 0.8}
}

// Result is the outcome of one layer invocation. Immutable after creation.
type Result struct {
	Response       string   `json:"response"`
	Confidence     float64  `json:"confidence"`
	ReasoningChain []string `json:"reasoning_chain,omitempty"`
	Evidence       []string `json:"evidence,omitempty"`
	Assumptions    []string `json:"assumptions,omitempty"`
	Weaknesses     []string `json:"weaknesses,omitempty"`
	DurationMs     int64    `json:"duration_ms"`
	Provider       string   `json:"provider"`
	Cost           float64  `json:"cost"`

	// IsValid reports whether the backend call itself completed. Call
	// failures are absorbed here, never propagated as errors.
	IsValid          bool     `json:"is_valid"`
	ValidationIssues []string `json:"validation_issues,omitempty"`
}

// IssueType classifies a validation concern.
type IssueType string

const (
	IssueLowConfidence          IssueType = "low_confidence"
	IssueEmptyResponse          IssueType = "empty_response"
	IssueGroundTruthMismatch    IssueType = "ground_truth_mismatch"
	IssueShallowReasoning       IssueType = "shallow_reasoning"
	IssueNoAssumptions          IssueType = "no_assumptions"
	IssueNoEvidence             IssueType = "no_evidence"
	IssueContradiction          IssueType = "contradiction"
	IssueCrossValidation        IssueType = "cross_validation"
	IssueNoConsensus            IssueType = "no_consensus"
	IssuePartialConsensus       IssueType = "partial_consensus"
	IssueReasoningDepthVariance IssueType = "reasoning_depth_variance"
)

// Issue is one validation concern with a [0,1] severity. StepIndex is -1
// unless the issue points at a specific reasoning step.
type Issue struct {
	Type        IssueType `json:"type"`
	Description string    `json:"description"`
	Severity    float64   `json:"severity"`
	StepIndex   int       `json:"step_index"`
}

// Validation is a layer's structured judgement of a Result. Its Confidence
// is the post-validation trust estimate, distinct from the layer's
// self-reported confidence.
type Validation struct {
	IsValid     bool     `json:"is_valid"`
	Confidence  float64  `json:"confidence"`
	Issues      []Issue  `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// CrossValidation reconciles several layers' results for one request.
// ConsensusAnswer is always a literal Response value from LayerResults.
type CrossValidation struct {
	IsValid         bool     `json:"is_valid"`
	Confidence      float64  `json:"confidence"`
	Issues          []Issue  `json:"issues,omitempty"`
	Agreements      []string `json:"agreements,omitempty"`
	Disagreements   []string `json:"disagreements,omitempty"`
	ConsensusAnswer string   `json:"consensus_answer"`
	LayerResults    []Result `json:"layer_results"`
}

// RunResult is what callers receive. Degraded-but-present answers are the
// common case: callers must inspect IsSuccessful and FinalConfidence rather
// than relying on an error to signal quality.
type RunResult struct {
	FinalAnswer     string           `json:"final_answer"`
	FinalConfidence float64          `json:"final_confidence"`
	LayerResults    []Result         `json:"layer_results"`
	CrossValidation *CrossValidation `json:"cross_validation,omitempty"`
	TotalDurationMs int64            `json:"total_duration_ms"`
	TotalCost       float64          `json:"total_cost"`
	EarlyStopped    bool             `json:"early_stopped"`
	IsSuccessful    bool             `json:"is_successful"`
	Error           string           `json:"error,omitempty"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
