package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"voxsmith/internal/services"
)

func TestConsoleHandlerFormatsComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl)).With(String(FieldComponent, "narrate"))

	logger.Info("slide attached", Int(FieldSlide, 4))

	line := buf.String()
	if !strings.Contains(line, "INFO narrate: slide attached") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "slide=4") {
		t.Fatalf("missing slide attr: %q", line)
	}
}

func TestRedactionMasksSecretEverywhere(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	handler := redactingHandler{
		inner:    newJSONHandler(&buf, lvl),
		redactor: newRedactor([]string{"sk-super-secret"}),
	}
	direct := slog.New(handler)

	direct.Info("request failed with key sk-super-secret",
		String("header", "xi-api-key: sk-super-secret"),
		Error(errors.New("401 for sk-super-secret")),
	)

	out := buf.String()
	if strings.Contains(out, "sk-super-secret") {
		t.Fatalf("secret leaked into log output: %q", out)
	}
	if strings.Count(out, "[redacted]") < 3 {
		t.Fatalf("expected redaction in message, attr, and error: %q", out)
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(out), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestRedactionAppliesToWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	handler := redactingHandler{
		inner:    newJSONHandler(&buf, lvl),
		redactor: newRedactor([]string{"topsecret"}),
	}
	logger := slog.New(handler).With(String("credential", "topsecret"))
	logger.Info("ready")

	if strings.Contains(buf.String(), "topsecret") {
		t.Fatalf("secret leaked via WithAttrs: %q", buf.String())
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithSlide(ctx, 7)
	ctx = services.WithStage(ctx, "synthesized")

	WithContext(ctx, logger).Info("progress")

	line := buf.String()
	for _, want := range []string{"run_id=run-1", "slide=7", "stage=synthesized"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %q", want, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
