package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestOrNopHandlesNilInterface(t *testing.T) {
	if got := OrNop(nil); got == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	var typed *componentLogger
	if got := OrNop(typed); got == nil {
		t.Fatal("OrNop(typed nil) returned nil")
	}
	// Must not panic.
	OrNop(nil).Info("ignored %d", 1)
}

func TestComponentLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := &componentLogger{
		component: "test",
		level:     LevelWarn,
		out:       log.New(&buf, "", 0),
	}
	l.Debug("debug line")
	l.Info("info line")
	l.Warn("warn line")
	l.Error("error line")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("below-level lines leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] [test] warn line") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] [test] error line") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestMultiFlattensAndSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	inner := &componentLogger{component: "a", level: LevelDebug, out: log.New(&buf, "", 0)}
	combined := Multi(nil, Multi(inner), Nop())
	combined.Info("hello %s", "world")
	if !strings.Contains(buf.String(), "hello world") {
		t.Errorf("fan-out did not reach inner logger: %q", buf.String())
	}
	if got := Multi(); got == nil {
		t.Fatal("Multi() returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
