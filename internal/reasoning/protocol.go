package reasoning

import (
	"regexp"
	"strconv"
	"strings"
)

// The structured output protocol backends are instructed to emit:
//
//	REASONING:
//	Step 1: <text>
//	ASSUMPTIONS:
//	- <text>
//	EVIDENCE:
//	- <text>
//	WEAKNESSES:
//	- <text>
//	ANSWER: <text>
//	CONFIDENCE: <0-100 or 0.0-1.0>
//
// Markers are case-insensitive, one per line. Parsing is best-effort and
// never fails: absent sections degrade to weaker signals.

type section int

const (
	sectionNone section = iota
	sectionReasoning
	sectionAssumptions
	sectionEvidence
	sectionWeaknesses
)

var stepPattern = regexp.MustCompile(`(?i)^step\s*\d+\s*:\s*(.*)$`)

// StructuredOutput is the best-effort decomposition of raw backend text.
type StructuredOutput struct {
	Chain       []string
	Assumptions []string
	Evidence    []string
	Weaknesses  []string
	Answer      string
	Confidence  float64
	// HasConfidence reports whether a CONFIDENCE: line was parsed; when
	// false the caller supplies its own estimate.
	HasConfidence bool
}

// ParseStructured scans raw backend text line by line, tracking the current
// section. It never returns an error; structural absence degrades to
// fallbacks (last non-blank line as answer, Step-pattern extraction for the
// chain).
func ParseStructured(text string) StructuredOutput {
	var out StructuredOutput
	current := sectionNone
	sawAnswer := false

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "REASONING:"):
			current = sectionReasoning
			continue
		case strings.HasPrefix(upper, "ASSUMPTIONS:"):
			current = sectionAssumptions
			continue
		case strings.HasPrefix(upper, "EVIDENCE:"):
			current = sectionEvidence
			continue
		case strings.HasPrefix(upper, "WEAKNESSES:"):
			current = sectionWeaknesses
			continue
		case strings.HasPrefix(upper, "ANSWER:"):
			out.Answer = strings.TrimSpace(line[len("ANSWER:"):])
			sawAnswer = true
			current = sectionNone
			continue
		case strings.HasPrefix(upper, "CONFIDENCE:"):
			if v, ok := parseConfidenceScalar(line[len("CONFIDENCE:"):]); ok {
				out.Confidence = v
				out.HasConfidence = true
			}
			current = sectionNone
			continue
		}

		switch current {
		case sectionReasoning:
			if m := stepPattern.FindStringSubmatch(line); m != nil {
				out.Chain = append(out.Chain, strings.TrimSpace(m[1]))
			}
		case sectionAssumptions:
			if item, ok := bulletContent(line); ok {
				out.Assumptions = append(out.Assumptions, item)
			}
		case sectionEvidence:
			if item, ok := bulletContent(line); ok {
				out.Evidence = append(out.Evidence, item)
			}
		case sectionWeaknesses:
			if item, ok := bulletContent(line); ok {
				out.Weaknesses = append(out.Weaknesses, item)
			}
		}
	}

	if !sawAnswer {
		out.Answer = lastNonBlankLine(text)
	}
	if len(out.Chain) == 0 {
		out.Chain = extractSteps(text)
	}
	return out
}

// Critique is the parsed form of a verification reply:
//
//	VALID: yes|no
//	CONFIDENCE: <0-100>
//	ISSUES:
//	- <text>
//	SUGGESTIONS:
//	- <text>
type Critique struct {
	Valid         bool
	HasValid      bool
	Confidence    float64
	HasConfidence bool
	Issues        []string
	Suggestions   []string
}

// ParseCritique applies the same line-state-machine technique to the
// verification format. VALID: maps to a boolean by substring match on
// "yes"/"true".
func ParseCritique(text string) Critique {
	var out Critique
	const (
		inNone = iota
		inIssues
		inSuggestions
	)
	current := inNone

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "VALID:"):
			value := strings.ToLower(line[len("VALID:"):])
			out.Valid = strings.Contains(value, "yes") || strings.Contains(value, "true")
			out.HasValid = true
			current = inNone
			continue
		case strings.HasPrefix(upper, "CONFIDENCE:"):
			if v, ok := parseConfidenceScalar(line[len("CONFIDENCE:"):]); ok {
				out.Confidence = v
				out.HasConfidence = true
			}
			current = inNone
			continue
		case strings.HasPrefix(upper, "ISSUES:"):
			current = inIssues
			continue
		case strings.HasPrefix(upper, "SUGGESTIONS:"):
			current = inSuggestions
			continue
		}

		switch current {
		case inIssues:
			if item, ok := bulletContent(line); ok {
				out.Issues = append(out.Issues, item)
			}
		case inSuggestions:
			if item, ok := bulletContent(line); ok {
				out.Suggestions = append(out.Suggestions, item)
			}
		}
	}
	return out
}

// parseConfidenceScalar accepts an integer or decimal, strips a trailing %,
// and normalizes to [0,1]. Values above 1 are assumed to be on a 0-100 scale.
func parseConfidenceScalar(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if v > 1 {
		v /= 100
	}
	return clamp01(v), true
}

func bulletContent(line string) (string, bool) {
	if !strings.HasPrefix(line, "-") {
		return "", false
	}
	item := strings.TrimSpace(strings.TrimPrefix(line, "-"))
	if item == "" {
		return "", false
	}
	return item, true
}

func lastNonBlankLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func extractSteps(text string) []string {
	var steps []string
	for _, rawLine := range strings.Split(text, "\n") {
		if m := stepPattern.FindStringSubmatch(strings.TrimSpace(rawLine)); m != nil {
			steps = append(steps, strings.TrimSpace(m[1]))
		}
	}
	return steps
}
