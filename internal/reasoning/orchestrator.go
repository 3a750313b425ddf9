package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/martiendejong/Hazina-sub003/internal/llm"
	"github.com/martiendejong/Hazina-sub003/internal/logging"
	"github.com/martiendejong/Hazina-sub003/internal/observability"
)

// Engine drives escalation across registered layers: run a layer, validate
// its result, stop early when the validated confidence clears the caller's
// bar, otherwise escalate to the next layer. Layers run sequentially on
// purpose; speculative parallel execution would defeat the cost savings the
// tiered design exists for.
type Engine struct {
	layers     []Layer
	heuristics Heuristics
	logger     logging.Logger
	metrics    *Metrics
	tracer     trace.Tracer

	// critic serves the consensus resolver's one extra backend call. When
	// nil, consensus falls back to purely numeric heuristics.
	critic llm.Client
}

// EngineConfig captures the dependencies to construct an Engine. Zero-value
// fields get working defaults.
type EngineConfig struct {
	Heuristics *Heuristics
	Logger     logging.Logger
	Metrics    *Metrics
	Tracer     trace.Tracer
	Critic     llm.Client
}

// NewEngine constructs an engine with no layers; register them with
// AddLayer in escalation order (conventionally fast, deep, verification).
func NewEngine(cfg EngineConfig) *Engine {
	h := DefaultHeuristics()
	if cfg.Heuristics != nil {
		h = *cfg.Heuristics
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = defaultMetrics()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("hazina/reasoning")
	}
	return &Engine{
		heuristics: h,
		logger:     logging.OrNop(cfg.Logger),
		metrics:    metrics,
		tracer:     tracer,
		critic:     cfg.Critic,
	}
}

// AddLayer appends a layer to the escalation chain.
func (e *Engine) AddLayer(layer Layer) {
	e.layers = append(e.layers, layer)
}

// Layers returns the registered chain in order.
func (e *Engine) Layers() []Layer {
	return e.layers
}

// Reason runs the escalation state machine for one prompt. It always
// returns a RunResult: call failures, validation concerns, and disagreement
// are folded into it rather than surfaced as errors.
func (e *Engine) Reason(ctx context.Context, prompt string, rctx Context) *RunResult {
	run := &RunResult{}
	if rctx.MinConfidence <= 0 {
		rctx.MinConfidence = NewContext().MinConfidence
	}

	e.metrics.requestsActive.Inc()
	defer e.metrics.requestsActive.Dec()

	ctx, span := e.tracer.Start(ctx, observability.SpanReasonRequest,
		trace.WithAttributes(attribute.Float64(observability.AttrMinConfidence, rctx.MinConfidence)))
	defer span.End()
	defer func() {
		span.SetAttributes(
			attribute.Bool(observability.AttrEarlyStop, run.EarlyStopped),
			attribute.Float64(observability.AttrConfidence, run.FinalConfidence),
			attribute.Float64(observability.AttrCost, run.TotalCost),
		)
		if run.Error != "" {
			span.SetAttributes(observability.ErrorAttrs(errors.New(run.Error))...)
		}
	}()

	var failures []string
	ran := 0

	for _, layer := range e.layers {
		if rctx.MaxSteps > 0 && ran >= rctx.MaxSteps {
			e.logger.Debug("step budget %d exhausted", rctx.MaxSteps)
			break
		}
		// Cancellation is observable between layers: return the partial
		// results rather than discarding completed work.
		if err := ctx.Err(); err != nil {
			run.IsSuccessful = false
			run.Error = fmt.Sprintf("cancelled before layer %q: %v", layer.Name(), err)
			return run
		}
		if ran > 0 {
			e.metrics.escalations.Inc()
		}

		layerCtx, layerSpan := e.tracer.Start(ctx, observability.SpanReasonLayer,
			trace.WithAttributes(attribute.String(observability.AttrLayer, layer.Name())))
		result := layer.Reason(layerCtx, prompt, rctx)
		layerSpan.SetAttributes(
			attribute.String(observability.AttrModel, result.Provider),
			attribute.Float64(observability.AttrConfidence, result.Confidence),
			attribute.Float64(observability.AttrCost, result.Cost),
		)
		if !result.IsValid {
			layerSpan.SetAttributes(observability.ErrorAttrs(
				errors.New(strings.Join(result.ValidationIssues, "; ")))...)
		}
		layerSpan.End()

		ran++
		run.LayerResults = append(run.LayerResults, result)
		run.TotalDurationMs += result.DurationMs
		run.TotalCost += result.Cost
		e.metrics.observeLayer(layer.Name(), float64(result.DurationMs)/1000, !result.IsValid)

		if !result.IsValid {
			failures = append(failures,
				fmt.Sprintf("%s: %s", layer.Name(), strings.Join(result.ValidationIssues, "; ")))
			e.logger.Warn("layer %q failed, escalating: %s", layer.Name(), failures[len(failures)-1])
			continue
		}

		validation := layer.Validate(ctx, result, rctx)
		e.logger.Debug("layer %q validated: valid=%t confidence=%.2f issues=%d",
			layer.Name(), validation.IsValid, result.Confidence, len(validation.Issues))

		if validation.IsValid && result.Confidence >= rctx.MinConfidence {
			run.EarlyStopped = true
			run.FinalAnswer = result.Response
			run.FinalConfidence = result.Confidence
			e.metrics.earlyStops.Inc()
			break
		}
	}

	successful := make([]Result, 0, len(run.LayerResults))
	for _, r := range run.LayerResults {
		if r.IsValid {
			successful = append(successful, r)
		}
	}

	// Only when every attempted layer failed is the whole request a
	// failure; a single surviving answer, however shaky, is returned.
	if len(successful) == 0 {
		run.IsSuccessful = false
		run.Error = strings.Join(failures, " | ")
		if run.Error == "" {
			run.Error = "no reasoning layers are configured"
		}
		return run
	}
	run.IsSuccessful = true

	if ran >= 2 {
		cross := e.crossValidate(ctx, successful, rctx)
		run.CrossValidation = &cross
		run.FinalAnswer = cross.ConsensusAnswer
		run.FinalConfidence = cross.Confidence
		e.metrics.observeConsensus(cross)
		return run
	}

	if !run.EarlyStopped {
		last := successful[len(successful)-1]
		run.FinalAnswer = last.Response
		run.FinalConfidence = last.Confidence
	}
	return run
}

// crossValidate prefers a registered verification layer so the critique call
// uses that tier's backend; otherwise it resolves with the engine's critic
// client (which may be nil, degrading to numeric heuristics only).
func (e *Engine) crossValidate(ctx context.Context, results []Result, rctx Context) CrossValidation {
	ctx, span := e.tracer.Start(ctx, observability.SpanReasonConsensus,
		trace.WithAttributes(attribute.Int("results", len(results))))
	defer span.End()

	for _, layer := range e.layers {
		if verifier, ok := layer.(*VerificationLayer); ok {
			return verifier.CrossValidate(ctx, results, rctx)
		}
	}
	return resolveConsensus(ctx, e.critic, results, rctx, e.heuristics, e.logger)
}
