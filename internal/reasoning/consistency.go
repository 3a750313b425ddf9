package reasoning

import (
	"fmt"
	"strings"
	"unicode"
)

// CheckConsistency runs a pairwise contradiction scan over a reasoning
// chain. Two steps are flagged when exactly one of them contains a negation
// word and they share at least SharedWordMin words longer than
// SharedWordMinLen. Deliberately high-recall/low-precision: it biases toward
// flagging for verification-layer review rather than silently passing
// inconsistent chains.
func CheckConsistency(chain []string, h Heuristics) []Issue {
	var issues []Issue

	words := make([][]string, len(chain))
	negated := make([]bool, len(chain))
	for i, step := range chain {
		words[i] = tokenize(step)
		negated[i] = containsAny(words[i], h.NegationWords)
	}

	for i := 0; i < len(chain); i++ {
		for j := i + 1; j < len(chain); j++ {
			if negated[i] == negated[j] {
				continue
			}
			if sharedLongWords(words[i], words[j], h.SharedWordMinLen) >= h.SharedWordMin {
				issues = append(issues, Issue{
					Type:        IssueContradiction,
					Description: fmt.Sprintf("steps %d and %d appear to contradict each other", i+1, j+1),
					Severity:    h.ContradictionSeverity,
					StepIndex:   i,
				})
			}
		}
	}
	return issues
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsAny(words []string, set []string) bool {
	for _, w := range words {
		for _, candidate := range set {
			if w == candidate {
				return true
			}
		}
	}
	return false
}

func sharedLongWords(a, b []string, minLen int) int {
	seen := make(map[string]bool, len(a))
	for _, w := range a {
		if len(w) > minLen {
			seen[w] = true
		}
	}
	counted := make(map[string]bool)
	shared := 0
	for _, w := range b {
		if seen[w] && !counted[w] {
			counted[w] = true
			shared++
		}
	}
	return shared
}
