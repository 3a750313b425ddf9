package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/martiendejong/Hazina-sub003/internal/logging"
)

// RetryConfig controls wire-level retries. These retries belong to the
// transport, not the reasoning engine: the engine's own failure-recovery
// strategy is escalation to the next layer, never re-running the same one.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2.0,
	}
}

type retryClient struct {
	underlying Client
	config     RetryConfig
	logger     logging.Logger
}

var _ Client = (*retryClient)(nil)

// NewRetryClient wraps a client with exponential-backoff retries for
// transient transport failures. Context errors and non-retryable API errors
// are returned immediately.
func NewRetryClient(client Client, config RetryConfig) Client {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Multiplier <= 1 {
		config.Multiplier = 2.0
	}
	return &retryClient{
		underlying: client,
		config:     config,
		logger:     logging.NewComponentLogger("llm-retry"),
	}
}

func (c *retryClient) Complete(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	delay := c.config.InitialDelay

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		resp, err := c.underlying.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryable(err) {
			return nil, err
		}
		if attempt == c.config.MaxAttempts {
			break
		}

		c.logger.Warn("attempt %d/%d failed, retrying in %v: %v",
			attempt, c.config.MaxAttempts, delay, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * c.config.Multiplier)
		if c.config.MaxDelay > 0 && delay > c.config.MaxDelay {
			delay = c.config.MaxDelay
		}
	}

	return nil, fmt.Errorf("llm request failed after %d attempts: %w", c.config.MaxAttempts, lastErr)
}

func (c *retryClient) Model() string {
	return c.underlying.Model()
}

// TotalCost proxies to the underlying client when it reports cost.
func (c *retryClient) TotalCost() float64 {
	if reporter, ok := c.underlying.(CostReporter); ok {
		return reporter.TotalCost()
	}
	return 0
}

func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"status 429", "status 500", "status 502", "status 503", "status 504",
		"connection refused", "connection reset", "timeout", "temporarily",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
