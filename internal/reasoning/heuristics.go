package reasoning

// Heuristics gathers every tunable threshold and word list used by the
// parser-adjacent scoring code. Construct once at startup and treat as
// immutable; tests build custom instances to exercise boundary behavior.
type Heuristics struct {
	// BlockingSeverity is the cutoff at or above which an issue blocks
	// early-stop. Below it, issues are advisory.
	BlockingSeverity float64 `yaml:"blocking_severity"`

	// Confidence estimator (used when a backend omits CONFIDENCE:).
	EstimatorBase            float64  `yaml:"estimator_base"`
	EstimatorChainMin        int      `yaml:"estimator_chain_min"`
	EstimatorChainBonus      float64  `yaml:"estimator_chain_bonus"`
	EstimatorHedgePenalty    float64  `yaml:"estimator_hedge_penalty"`
	EstimatorConfidenceBonus float64  `yaml:"estimator_confidence_bonus"`
	HedgeWords               []string `yaml:"hedge_words"`
	ConfidenceWords          []string `yaml:"confidence_words"`

	// Consistency checker.
	NegationWords         []string `yaml:"negation_words"`
	SharedWordMin         int      `yaml:"shared_word_min"`
	SharedWordMinLen      int      `yaml:"shared_word_min_len"`
	ContradictionSeverity float64  `yaml:"contradiction_severity"`

	// Per-layer validation severities and thresholds.
	EmptyResponseSeverity     float64 `yaml:"empty_response_severity"`
	FastLowConfidenceSeverity float64 `yaml:"fast_low_confidence_severity"`
	FastGroundTruthSeverity   float64 `yaml:"fast_ground_truth_severity"`
	DeepGroundTruthSeverity   float64 `yaml:"deep_ground_truth_severity"`
	ShallowChainMin           int     `yaml:"shallow_chain_min"`
	ShallowReasoningSeverity  float64 `yaml:"shallow_reasoning_severity"`
	NoAssumptionsSeverity     float64 `yaml:"no_assumptions_severity"`
	NoEvidenceSeverity        float64 `yaml:"no_evidence_severity"`

	// Post-validation trust estimates.
	FastCleanConfidence float64 `yaml:"fast_clean_confidence"`
	FastIssueConfidence float64 `yaml:"fast_issue_confidence"`
	DeepCleanConfidence float64 `yaml:"deep_clean_confidence"`
	DeepIssueConfidence float64 `yaml:"deep_issue_confidence"`

	// Verification critique defaults. CritiqueRejectedConfidence is the
	// trust assigned to a rejected result whose critique omitted
	// CONFIDENCE:.
	CritiqueRejectSeverity     float64 `yaml:"critique_reject_severity"`
	CritiqueAcceptSeverity     float64 `yaml:"critique_accept_severity"`
	CritiqueRejectedConfidence float64 `yaml:"critique_rejected_confidence"`

	// Consensus resolver.
	NoConsensusSeverity            float64 `yaml:"no_consensus_severity"`
	PartialConsensusSeverity       float64 `yaml:"partial_consensus_severity"`
	ConsensusLowConfidenceSeverity float64 `yaml:"consensus_low_confidence_severity"`
	DepthVarianceSeverity          float64 `yaml:"depth_variance_severity"`
}

// DefaultHeuristics returns the production thresholds.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		BlockingSeverity: 0.7,

		EstimatorBase:            0.7,
		EstimatorChainMin:        3,
		EstimatorChainBonus:      0.1,
		EstimatorHedgePenalty:    0.2,
		EstimatorConfidenceBonus: 0.1,
		HedgeWords:               []string{"might", "possibly", "not sure"},
		ConfidenceWords:          []string{"certainly", "definitely"},

		NegationWords:         []string{"not", "never", "no", "cannot", "impossible", "false"},
		SharedWordMin:         2,
		SharedWordMinLen:      4,
		ContradictionSeverity: 0.8,

		EmptyResponseSeverity:     1.0,
		FastLowConfidenceSeverity: 0.5,
		FastGroundTruthSeverity:   0.8,
		DeepGroundTruthSeverity:   0.9,
		ShallowChainMin:           3,
		ShallowReasoningSeverity:  0.6,
		NoAssumptionsSeverity:     0.3,
		NoEvidenceSeverity:        0.5,

		FastCleanConfidence: 0.9,
		FastIssueConfidence: 0.5,
		DeepCleanConfidence: 0.85,
		DeepIssueConfidence: 0.4,

		CritiqueRejectSeverity:     0.8,
		CritiqueAcceptSeverity:     0.3,
		CritiqueRejectedConfidence: 0.3,

		NoConsensusSeverity:            0.9,
		PartialConsensusSeverity:       0.5,
		ConsensusLowConfidenceSeverity: 0.6,
		DepthVarianceSeverity:          0.4,
	}
}

// Blocking reports whether an issue blocks early-stop under these thresholds.
func (h Heuristics) Blocking(issue Issue) bool {
	return issue.Severity >= h.BlockingSeverity
}

func (h Heuristics) hasBlocking(issues []Issue) bool {
	for _, issue := range issues {
		if h.Blocking(issue) {
			return true
		}
	}
	return false
}

// suggestionTable maps issue types to deterministic remediation text.
var suggestionTable = map[IssueType]string{
	IssueLowConfidence:          "escalate to a deeper reasoning layer or lower the confidence requirement",
	IssueEmptyResponse:          "rephrase the prompt so the model produces an explicit ANSWER line",
	IssueGroundTruthMismatch:    "verify the flagged facts against the supplied ground truth",
	IssueShallowReasoning:       "break down the problem into more steps",
	IssueNoAssumptions:          "state the assumptions the reasoning relies on",
	IssueNoEvidence:             "cite evidence supporting each reasoning step",
	IssueContradiction:          "review the flagged steps for contradictory claims",
	IssueCrossValidation:        "inspect the verifier's critique before trusting the answer",
	IssueNoConsensus:            "treat the answer as unresolved; all layers disagreed",
	IssuePartialConsensus:       "review the minority answers before accepting the majority",
	IssueReasoningDepthVariance: "re-run the shallow layers with a request for detailed steps",
}

// SuggestionsFor derives remediation strings from issue types, deduplicated
// in first-seen order.
func SuggestionsFor(issues []Issue) []string {
	var out []string
	seen := make(map[IssueType]bool, len(issues))
	for _, issue := range issues {
		if seen[issue.Type] {
			continue
		}
		seen[issue.Type] = true
		if s, ok := suggestionTable[issue.Type]; ok {
			out = append(out, s)
		}
	}
	return out
}
