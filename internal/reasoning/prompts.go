package reasoning

import (
	"fmt"
	"strings"
)

const fastSystemPrompt = `You are a fast reasoning assistant. Think through the problem in a few brief steps, then answer.
Respond in exactly this format:
REASONING:
Step 1: <brief step>
Step 2: <brief step>
ANSWER: <your final answer>
CONFIDENCE: <0-100>`

const deepSystemPrompt = `You are a rigorous reasoning assistant. Work through the problem carefully and make your thinking auditable: list every assumption you rely on, the evidence supporting your conclusion, and the weaknesses of your own argument.
Respond in exactly this format:
REASONING:
Step 1: <detailed step>
Step 2: <detailed step>
Step 3: <detailed step>
ASSUMPTIONS:
- <assumption>
EVIDENCE:
- <evidence>
WEAKNESSES:
- <weakness>
ANSWER: <your final answer>
CONFIDENCE: <0-100>`

const verifySystemPrompt = `You are a verification assistant. Independently re-derive the answer to the problem from first principles, without assuming any previous answer is correct. Be explicit about your derivation.
Respond in exactly this format:
REASONING:
Step 1: <derivation step>
Step 2: <derivation step>
ASSUMPTIONS:
- <assumption>
EVIDENCE:
- <evidence>
WEAKNESSES:
- <weakness>
ANSWER: <your final answer>
CONFIDENCE: <0-100>`

// withDomain appends the caller's free-text domain hint to a system prompt.
func withDomain(system string, rctx Context) string {
	if strings.TrimSpace(rctx.Domain) == "" {
		return system
	}
	return system + "\n\nDomain: " + rctx.Domain
}

// critiquePrompt asks the backend to critique a single candidate result.
func critiquePrompt(result Result) string {
	var sb strings.Builder
	sb.WriteString("Critically review the following reasoning result. Judge whether the answer is trustworthy.\n\n")
	fmt.Fprintf(&sb, "ANSWER UNDER REVIEW: %s\n", result.Response)
	fmt.Fprintf(&sb, "SELF-REPORTED CONFIDENCE: %.2f\n", result.Confidence)
	if len(result.ReasoningChain) > 0 {
		sb.WriteString("REASONING STEPS:\n")
		for i, step := range result.ReasoningChain {
			fmt.Fprintf(&sb, "Step %d: %s\n", i+1, step)
		}
	}
	if len(result.Assumptions) > 0 {
		sb.WriteString("STATED ASSUMPTIONS:\n")
		for _, a := range result.Assumptions {
			fmt.Fprintf(&sb, "- %s\n", a)
		}
	}
	sb.WriteString("\nReply in exactly this format:\n")
	sb.WriteString("VALID: yes|no\nCONFIDENCE: <0-100>\nISSUES:\n- <issue>\nSUGGESTIONS:\n- <suggestion>\n")
	return sb.String()
}

// crossCritiquePrompt extends the critique format to the full set of layer
// answers so the backend can surface cross-cutting inconsistencies the
// numeric heuristics miss.
func crossCritiquePrompt(results []Result) string {
	var sb strings.Builder
	sb.WriteString("Several independent reasoning passes produced the answers below for the same question. Identify inconsistencies between them and judge whether the set is trustworthy as a whole.\n\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "RESULT %d (provider %s, confidence %.2f):\n", i+1, r.Provider, r.Confidence)
		fmt.Fprintf(&sb, "ANSWER: %s\n", r.Response)
		if len(r.ReasoningChain) > 0 {
			fmt.Fprintf(&sb, "STEPS: %s\n", strings.Join(r.ReasoningChain, " | "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Reply in exactly this format:\n")
	sb.WriteString("VALID: yes|no\nCONFIDENCE: <0-100>\nISSUES:\n- <issue>\nSUGGESTIONS:\n- <suggestion>\n")
	return sb.String()
}
