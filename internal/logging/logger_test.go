package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, level string) *slog.Logger {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(level))
	return slog.New(newConsoleHandler(buf, levelVar))
}

func TestConsoleHandlerFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(newTestLogger(&buf, "info"), "pipeline")

	logger.Info("processing volume",
		String(FieldInputFile, "/data/emb_003.tif"),
		Int(FieldTimeIndex, 3),
		String(FieldModelStage, "early"),
	)

	line := buf.String()
	for _, want := range []string{"INFO", "[pipeline]", "processing volume", "input_file=/data/emb_003.tif", "time_index=3", "model_stage=early"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected output to contain %q, got %q", want, line)
		}
	}
}

func TestConsoleHandlerLevelGate(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be suppressed at warn level, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line missing, got %q", out)
	}
}

func TestConsoleHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, "info").WithGroup("runner")

	logger.Info("event", String("stage", "inference"))

	if !strings.Contains(buf.String(), "runner.stage=inference") {
		t.Fatalf("expected grouped key, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("goes nowhere")
}
