package server

import (
	"github.com/martiendejong/Hazina-sub003/internal/llm"
	"github.com/martiendejong/Hazina-sub003/internal/reasoning"
)

// ReasonRequest is the body of POST /api/reason.
type ReasonRequest struct {
	Prompt        string            `json:"prompt" binding:"required"`
	History       []HistoryMessage  `json:"history,omitempty"`
	MinConfidence float64           `json:"min_confidence,omitempty"`
	MaxSteps      int               `json:"max_steps,omitempty"`
	Domain        string            `json:"domain,omitempty"`
	GroundTruth   map[string]string `json:"ground_truth,omitempty"`
}

// HistoryMessage is one prior conversation turn.
type HistoryMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (m HistoryMessage) toMessage() llm.Message {
	return llm.Message{Role: m.Role, Content: m.Content}
}

// ReasonResponse summarizes one escalation run.
type ReasonResponse struct {
	Answer          string            `json:"answer"`
	Confidence      float64           `json:"confidence"`
	EarlyStopped    bool              `json:"early_stopped"`
	Successful      bool              `json:"successful"`
	Error           string            `json:"error,omitempty"`
	TotalDurationMs int64             `json:"total_duration_ms"`
	TotalCost       float64           `json:"total_cost"`
	Layers          []LayerSummary    `json:"layers"`
	CrossValidation *ConsensusSummary `json:"cross_validation,omitempty"`
}

// LayerSummary reports one layer's attempt.
type LayerSummary struct {
	Provider   string   `json:"provider"`
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Valid      bool     `json:"valid"`
	Issues     []string `json:"issues,omitempty"`
	DurationMs int64    `json:"duration_ms"`
	Cost       float64  `json:"cost"`
}

// ConsensusSummary reports the cross-layer resolution.
type ConsensusSummary struct {
	Valid         bool     `json:"valid"`
	Confidence    float64  `json:"confidence"`
	Answer        string   `json:"answer"`
	Agreements    []string `json:"agreements,omitempty"`
	Disagreements []string `json:"disagreements,omitempty"`
	Issues        []string `json:"issues,omitempty"`
}

// ErrorResponse carries a request-level failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newReasonResponse(run *reasoning.RunResult) ReasonResponse {
	resp := ReasonResponse{
		Answer:          run.FinalAnswer,
		Confidence:      run.FinalConfidence,
		EarlyStopped:    run.EarlyStopped,
		Successful:      run.IsSuccessful,
		Error:           run.Error,
		TotalDurationMs: run.TotalDurationMs,
		TotalCost:       run.TotalCost,
	}
	for _, r := range run.LayerResults {
		resp.Layers = append(resp.Layers, LayerSummary{
			Provider:   r.Provider,
			Answer:     r.Response,
			Confidence: r.Confidence,
			Valid:      r.IsValid,
			Issues:     r.ValidationIssues,
			DurationMs: r.DurationMs,
			Cost:       r.Cost,
		})
	}
	if cv := run.CrossValidation; cv != nil {
		summary := &ConsensusSummary{
			Valid:         cv.IsValid,
			Confidence:    cv.Confidence,
			Answer:        cv.ConsensusAnswer,
			Agreements:    cv.Agreements,
			Disagreements: cv.Disagreements,
		}
		for _, issue := range cv.Issues {
			summary.Issues = append(summary.Issues, issue.Description)
		}
		resp.CrossValidation = summary
	}
	return resp
}
