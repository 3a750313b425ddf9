package main

import (
	"fmt"

	"github.com/martiendejong/Hazina-sub003/internal/config"
	"github.com/martiendejong/Hazina-sub003/internal/llm"
	"github.com/martiendejong/Hazina-sub003/internal/logging"
	"github.com/martiendejong/Hazina-sub003/internal/observability"
	"github.com/martiendejong/Hazina-sub003/internal/reasoning"
)

// buildEngine assembles the full escalation chain from configuration:
// one shared backend client wrapped with retries and caching, and the
// fast, deep and verification layers in order.
func buildEngine(cfg config.Config, logger logging.Logger) (*reasoning.Engine, *observability.TracerProvider, error) {
	if cfg.LLM.APIKey == "" {
		return nil, nil, fmt.Errorf("no API key configured; set llm.api_key or HAZINA_API_KEY")
	}

	tp, err := observability.NewTracerProvider(cfg.Observability)
	if err != nil {
		return nil, nil, fmt.Errorf("tracing setup: %w", err)
	}

	client := llm.NewOpenAIClient(cfg.LLM.Model, llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	})

	retryCfg := llm.DefaultRetryConfig()
	if cfg.LLM.RetryAttempts > 0 {
		retryCfg.MaxAttempts = cfg.LLM.RetryAttempts
	}
	if cfg.LLM.RetryDelay > 0 {
		retryCfg.InitialDelay = cfg.LLM.RetryDelay
	}
	if cfg.LLM.RetryMaxDelay > 0 {
		retryCfg.MaxDelay = cfg.LLM.RetryMaxDelay
	}
	if cfg.LLM.RetryMultiplier > 0 {
		retryCfg.Multiplier = cfg.LLM.RetryMultiplier
	}
	client = llm.NewRetryClient(client, retryCfg)
	client, err = llm.NewCachingClient(client, cfg.LLM.CacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("response cache: %w", err)
	}

	heuristics := reasoning.DefaultHeuristics()
	if cfg.Reasoning.Heuristics != nil {
		heuristics = *cfg.Reasoning.Heuristics
	}

	engine := reasoning.NewEngine(reasoning.EngineConfig{
		Heuristics: &heuristics,
		Logger:     logger,
		Tracer:     tp.Tracer(),
	})
	engine.AddLayer(reasoning.NewFastLayer(client, heuristics, logger))
	engine.AddLayer(reasoning.NewDeepLayer(client, heuristics, logger))
	engine.AddLayer(reasoning.NewVerificationLayer(client, heuristics, logger))

	return engine, tp, nil
}
