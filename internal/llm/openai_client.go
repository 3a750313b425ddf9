package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/martiendejong/Hazina-sub003/internal/logging"
)

// Config captures the settings shared by HTTP-backed clients.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
}

// OpenAI API compatible client.
type openaiClient struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
	headers    map[string]string

	costMu    sync.Mutex
	totalCost float64
}

var (
	_ Client       = (*openaiClient)(nil)
	_ CostReporter = (*openaiClient)(nil)
)

// NewOpenAIClient constructs a client that speaks the OpenAI-compatible chat
// completions API. It satisfies CostReporter: every completed call adds its
// token cost to a cumulative total.
func NewOpenAIClient(model string, config Config) Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}

	timeout := 120 * time.Second
	if config.Timeout > 0 {
		timeout = config.Timeout
	}

	return &openaiClient{
		model:      model,
		apiKey:     config.APIKey,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger("llm-openai"),
		headers:    config.Headers,
	}
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	Temperature float64      `json:"temperature,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Stream      bool         `json:"stream"`
}

type oaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *openaiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	oaiReq := oaiRequest{
		Model:       c.model,
		Messages:    make([]oaiMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, m := range req.Messages {
		oaiReq.Messages = append(oaiReq.Messages, oaiMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(oaiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	c.logger.Debug("POST %s model=%s messages=%d", endpoint, c.model, len(req.Messages))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	started := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm request failed: status %d: %s", httpResp.StatusCode, truncate(string(respBody), 512))
	}

	var parsed oaiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("llm error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("llm response contained no choices")
	}

	resp := &Response{
		Content:    parsed.Choices[0].Message.Content,
		StopReason: parsed.Choices[0].FinishReason,
		Usage: TokenUsage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}

	// Some OpenAI-compatible gateways omit usage; reconstruct it with
	// tiktoken so cost accounting stays meaningful.
	if resp.Usage.TotalTokens == 0 {
		resp.Usage.PromptTokens = countMessagesTokens(req.Messages)
		resp.Usage.CompletionTokens = CountTokens(resp.Content)
		resp.Usage.TotalTokens = resp.Usage.PromptTokens + resp.Usage.CompletionTokens
	}

	callCost := CalculateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, c.model)
	c.costMu.Lock()
	c.totalCost += callCost
	c.costMu.Unlock()

	c.logger.Debug("completion finished in %v: tokens=%d cost=%.6f",
		time.Since(started), resp.Usage.TotalTokens, callCost)

	return resp, nil
}

func (c *openaiClient) Model() string {
	return c.model
}

// TotalCost returns the cumulative cost of all completed calls.
func (c *openaiClient) TotalCost() float64 {
	c.costMu.Lock()
	defer c.costMu.Unlock()
	return c.totalCost
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
