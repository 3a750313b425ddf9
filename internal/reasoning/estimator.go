package reasoning

import "strings"

// EstimateConfidence produces a usable confidence signal when a backend
// omits an explicit CONFIDENCE: value. It is a heuristic, not a calibrated
// probability: base score, a bonus for a non-trivial reasoning chain, a
// penalty per hedge word present, a bonus per confidence word present,
// clamped to [0,1].
func EstimateConfidence(response string, chain []string, h Heuristics) float64 {
	confidence := h.EstimatorBase

	if len(chain) >= h.EstimatorChainMin {
		confidence += h.EstimatorChainBonus
	}

	lower := strings.ToLower(response)
	for _, word := range h.HedgeWords {
		if strings.Contains(lower, word) {
			confidence -= h.EstimatorHedgePenalty
		}
	}
	for _, word := range h.ConfidenceWords {
		if strings.Contains(lower, word) {
			confidence += h.EstimatorConfidenceBonus
		}
	}

	return clamp01(confidence)
}
