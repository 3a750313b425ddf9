package llm

// ModelPricing holds pricing information per 1K tokens.
type ModelPricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

// pricing as of 2025
var pricingMap = map[string]ModelPricing{
	"gpt-4":                       {InputPer1K: 0.03, OutputPer1K: 0.06},
	"gpt-4-turbo":                 {InputPer1K: 0.01, OutputPer1K: 0.03},
	"gpt-4o":                      {InputPer1K: 0.005, OutputPer1K: 0.015},
	"gpt-4o-mini":                 {InputPer1K: 0.00015, OutputPer1K: 0.0006},
	"deepseek-chat":               {InputPer1K: 0.00014, OutputPer1K: 0.00028},
	"deepseek-reasoner":           {InputPer1K: 0.00055, OutputPer1K: 0.00219},
	"anthropic/claude-3-5-sonnet": {InputPer1K: 0.003, OutputPer1K: 0.015},
	"anthropic/claude-3-opus":     {InputPer1K: 0.015, OutputPer1K: 0.075},
}

// GetModelPricing returns pricing for a given model, with a conservative
// default for unknown models.
func GetModelPricing(model string) ModelPricing {
	if pricing, ok := pricingMap[model]; ok {
		return pricing
	}
	return ModelPricing{InputPer1K: 0.001, OutputPer1K: 0.002}
}

// CalculateCost calculates the monetary cost of a call from token usage.
func CalculateCost(inputTokens, outputTokens int, model string) float64 {
	pricing := GetModelPricing(model)
	inputCost := float64(inputTokens) / 1000.0 * pricing.InputPer1K
	outputCost := float64(outputTokens) / 1000.0 * pricing.OutputPer1K
	return inputCost + outputCost
}
