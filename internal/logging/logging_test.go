package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "json", Output: &buf})

	l.With(String("system", "pendulum")).Info(context.Background(), "integrated",
		Int("samples", 151), Float("drift", 1e-9), Err(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if rec["msg"] != "integrated" || rec["system"] != "pendulum" || rec["samples"] != float64(151) {
		t.Errorf("unexpected record %v", rec)
	}
	if rec["error"] != "boom" {
		t.Errorf("expected error field, got %v", rec["error"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf})
	l.Info(context.Background(), "hidden")
	l.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRunLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx, l := WithRunLogger(context.Background(), New(Config{Format: "json", Output: &buf}))

	id := RunIDFromContext(ctx)
	if id == "" {
		t.Fatal("expected run id on context")
	}
	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id || ctx2 != ctx {
		t.Error("EnsureRunID should keep an existing id")
	}

	l.Info(ctx, "hello")
	if !strings.Contains(buf.String(), id) {
		t.Errorf("log line missing run id: %s", buf.String())
	}
	if FromContext(ctx) != l {
		t.Error("FromContext should return the stored logger")
	}
	if _, ok := FromContext(context.Background()).(noopLogger); !ok {
		t.Error("expected noop logger for bare context")
	}
}
