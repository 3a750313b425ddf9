package reasoning

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/martiendejong/Hazina-sub003/internal/llm"
	"github.com/martiendejong/Hazina-sub003/internal/logging"
	"github.com/martiendejong/Hazina-sub003/internal/observability"
)

func newTestEngine(layers ...Layer) *Engine {
	engine := NewEngine(EngineConfig{
		Logger:  logging.Nop(),
		Metrics: MustNewMetrics(prometheus.NewRegistry()),
	})
	for _, layer := range layers {
		engine.AddLayer(layer)
	}
	return engine
}

func confidentFastLayer(answer string, confidence int) *FastLayer {
	client := scriptedClient("REASONING:\nStep 1: quick check\nANSWER: " + answer + "\nCONFIDENCE: " + strconv.Itoa(confidence))
	return NewFastLayer(client, DefaultHeuristics(), logging.Nop())
}

func confidentDeepLayer(answer string, confidence int) *DeepLayer {
	client := scriptedClient("REASONING:\nStep 1: derive\nStep 2: check\nStep 3: confirm\nASSUMPTIONS:\n- a\nEVIDENCE:\n- e\nWEAKNESSES:\n- w\nANSWER: " + answer + "\nCONFIDENCE: " + strconv.Itoa(confidence))
	return NewDeepLayer(client, DefaultHeuristics(), logging.Nop())
}

func failingLayer(name string) *FastLayer {
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return nil, errors.New(name + " exploded")
		},
	}
	return NewFastLayer(client, DefaultHeuristics(), logging.Nop())
}

func TestEngineEarlyStopOnConfidentFirstLayer(t *testing.T) {
	engine := newTestEngine(
		confidentFastLayer("42", 95),
		failingLayer("deep"), // must never run
	)
	rctx := NewContext() // MinConfidence 0.8

	run := engine.Reason(context.Background(), "q", rctx)

	if !run.IsSuccessful {
		t.Fatalf("run failed: %s", run.Error)
	}
	if !run.EarlyStopped {
		t.Error("expected early stop")
	}
	if len(run.LayerResults) != 1 {
		t.Fatalf("expected exactly 1 layer result, got %d", len(run.LayerResults))
	}
	if run.FinalAnswer != "42" {
		t.Errorf("final answer = %q", run.FinalAnswer)
	}
	approx(t, run.FinalConfidence, 0.95, "final confidence")
	if run.CrossValidation != nil {
		t.Error("single-layer run must not cross-validate")
	}
}

func TestEngineEscalatesAndConsolidates(t *testing.T) {
	engine := newTestEngine(
		confidentFastLayer("42", 50),
		confidentDeepLayer("42", 90),
	)
	rctx := NewContext()

	run := engine.Reason(context.Background(), "q", rctx)

	if !run.IsSuccessful {
		t.Fatalf("run failed: %s", run.Error)
	}
	if len(run.LayerResults) != 2 {
		t.Fatalf("expected both layers to run, got %d", len(run.LayerResults))
	}
	if run.CrossValidation == nil {
		t.Fatal("multi-layer run must cross-validate")
	}
	// The final confidence is the resolver's mean, not the deep layer's.
	approx(t, run.FinalConfidence, (0.5+0.9)/2, "resolver mean confidence")
	if run.FinalAnswer != "42" {
		t.Errorf("final answer = %q", run.FinalAnswer)
	}
}

func TestEngineTotalFailure(t *testing.T) {
	engine := newTestEngine(failingLayer("fast"), failingLayer("deep"))

	run := engine.Reason(context.Background(), "q", NewContext())

	if run.IsSuccessful {
		t.Fatal("all layers failed; run must be unsuccessful")
	}
	if len(run.LayerResults) != 2 {
		t.Errorf("expected every attempted layer recorded, got %d", len(run.LayerResults))
	}
	if run.Error == "" || !strings.Contains(run.Error, "fast exploded") || !strings.Contains(run.Error, "deep exploded") {
		t.Errorf("error should concatenate all layer failures: %q", run.Error)
	}
}

func TestEngineAbsorbsSingleLayerFailure(t *testing.T) {
	engine := newTestEngine(
		failingLayer("fast"),
		confidentDeepLayer("42", 90),
	)

	run := engine.Reason(context.Background(), "q", NewContext())

	if !run.IsSuccessful {
		t.Fatalf("one surviving layer should succeed: %s", run.Error)
	}
	if len(run.LayerResults) != 2 {
		t.Fatalf("failed layer must still be recorded, got %d results", len(run.LayerResults))
	}
	if run.LayerResults[0].IsValid {
		t.Error("first result should record the failure")
	}
	// Consensus runs over successful results only.
	if run.CrossValidation == nil || len(run.CrossValidation.LayerResults) != 1 {
		t.Errorf("cross validation should cover the single successful result")
	}
	if run.FinalAnswer != "42" {
		t.Errorf("final answer = %q", run.FinalAnswer)
	}
}

func TestEngineHonorsMaxSteps(t *testing.T) {
	engine := newTestEngine(
		confidentFastLayer("A", 10),
		confidentDeepLayer("B", 20),
		confidentDeepLayer("C", 30),
	)
	rctx := NewContext()
	rctx.MaxSteps = 2

	run := engine.Reason(context.Background(), "q", rctx)
	if len(run.LayerResults) != 2 {
		t.Errorf("step budget 2 should bound the chain, got %d layers", len(run.LayerResults))
	}
}

func TestEngineCancellationReturnsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			cancel() // cancelled while the first layer is in flight
			return &llm.Response{Content: "ANSWER: partial\nCONFIDENCE: 10"}, nil
		},
	}
	engine := newTestEngine(
		NewFastLayer(first, DefaultHeuristics(), logging.Nop()),
		confidentDeepLayer("never", 99),
	)

	run := engine.Reason(ctx, "q", NewContext())

	if run.IsSuccessful {
		t.Error("cancelled run must not be successful")
	}
	if !strings.Contains(run.Error, "cancelled") {
		t.Errorf("expected cancellation error, got %q", run.Error)
	}
	if len(run.LayerResults) != 1 {
		t.Errorf("completed work must be returned, got %d results", len(run.LayerResults))
	}
}

func TestEngineGroundTruthBlocksEarlyStop(t *testing.T) {
	engine := newTestEngine(
		confidentFastLayer("the capital is Lyon", 95),
		confidentDeepLayer("the capital is Paris", 90),
	)
	rctx := NewContext()
	rctx.GroundTruth = map[string]string{"capital": "Paris"}

	run := engine.Reason(context.Background(), "q", rctx)

	if len(run.LayerResults) != 2 {
		t.Fatalf("blocking ground-truth mismatch must force escalation, got %d layers", len(run.LayerResults))
	}
	if run.EarlyStopped && len(run.LayerResults) == 1 {
		t.Error("fast layer should not early-stop with a ground truth mismatch")
	}
}

func TestEngineVerificationLayerDrivesConsensus(t *testing.T) {
	calls := 0
	verifyClient := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			calls++
			return &llm.Response{Content: "REASONING:\nStep 1: re-derive\nANSWER: 42\nCONFIDENCE: 40\n"}, nil
		},
	}
	engine := newTestEngine(
		confidentFastLayer("42", 50),
		NewVerificationLayer(verifyClient, DefaultHeuristics(), logging.Nop()),
	)

	run := engine.Reason(context.Background(), "q", NewContext())

	if !run.IsSuccessful {
		t.Fatalf("run failed: %s", run.Error)
	}
	if run.CrossValidation == nil {
		t.Fatal("expected cross validation")
	}
	// Reason once + the resolver's critique call through the same client.
	if calls < 2 {
		t.Errorf("expected the verification backend to serve the consensus critique, got %d calls", calls)
	}
	if run.FinalAnswer != "42" {
		t.Errorf("final answer = %q", run.FinalAnswer)
	}
}

func TestEngineEmitsSharedSpanVocabulary(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	engine := NewEngine(EngineConfig{
		Logger:  logging.Nop(),
		Metrics: MustNewMetrics(prometheus.NewRegistry()),
		Tracer:  provider.Tracer("test"),
	})
	engine.AddLayer(confidentFastLayer("42", 50))
	engine.AddLayer(confidentDeepLayer("42", 90))

	engine.Reason(context.Background(), "q", NewContext())

	spans := recorder.Ended()
	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, span := range spans {
		byName[span.Name()] = span
	}
	for _, want := range []string{
		observability.SpanReasonRequest,
		observability.SpanReasonLayer,
		observability.SpanReasonConsensus,
	} {
		if _, ok := byName[want]; !ok {
			t.Errorf("missing span %q (got %d spans)", want, len(spans))
		}
	}

	hasAttr := func(span sdktrace.ReadOnlySpan, key string) bool {
		for _, kv := range span.Attributes() {
			if string(kv.Key) == key {
				return true
			}
		}
		return false
	}
	if span, ok := byName[observability.SpanReasonRequest]; ok {
		for _, key := range []string{observability.AttrMinConfidence, observability.AttrEarlyStop, observability.AttrConfidence, observability.AttrCost} {
			if !hasAttr(span, key) {
				t.Errorf("request span lacks attribute %q", key)
			}
		}
	}
	if span, ok := byName[observability.SpanReasonLayer]; ok {
		for _, key := range []string{observability.AttrLayer, observability.AttrModel, observability.AttrConfidence} {
			if !hasAttr(span, key) {
				t.Errorf("layer span lacks attribute %q", key)
			}
		}
	}
}

func TestEngineNoLayersConfigured(t *testing.T) {
	engine := newTestEngine()
	run := engine.Reason(context.Background(), "q", NewContext())
	if run.IsSuccessful || run.Error == "" {
		t.Errorf("engine without layers must fail cleanly: %+v", run)
	}
}

func TestEngineDefaultsMinConfidence(t *testing.T) {
	engine := newTestEngine(confidentFastLayer("42", 85))
	run := engine.Reason(context.Background(), "q", Context{}) // zero-value context

	if !run.EarlyStopped {
		t.Error("0.85 should clear the defaulted 0.8 bar")
	}
}
