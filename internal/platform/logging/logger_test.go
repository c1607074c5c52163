package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).With("league", "GB1")

	logger.Warn("club skipped", "club_id", "", "error", errors.New("missing id"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["league"] != "GB1" {
		t.Fatalf("expected league field, got %v", fields["league"])
	}
	if fields["error"] != "missing id" {
		t.Fatalf("expected error field, got %v", fields["error"])
	}
}

func TestLogger_OddArgumentsKeepLastKey(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.InfoContext(context.Background(), "dangling", "only_key")

	fields := logs.All()[0].ContextMap()
	if _, ok := fields["only_key"]; !ok {
		t.Fatalf("expected dangling key to be kept, got %v", fields)
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelInfo, Format: FormatConsole, Output: &buf, Name: "crawler"})

	logger.Debug("hidden")
	logger.Info("visible", "attempt", 1)
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "crawler") {
		t.Fatalf("unexpected console output: %q", out)
	}
}

func TestParseFormat(t *testing.T) {
	if got := ParseFormat(" Console "); got != FormatConsole {
		t.Fatalf("expected console, got %s", got)
	}
	if got := ParseFormat("xml"); got != FormatJSON {
		t.Fatalf("expected json fallback, got %s", got)
	}
}
