package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_KeyValueFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core)).Named("refresher").With("kind", "match")

	logger.Warn("refresh failed", "entity_id", "m1", "error", errors.New("boom"), "dangling")
	logger.Debug("dropped by level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("unexpected log count: got=%d want=1", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "refresher" {
		t.Fatalf("unexpected logger name: %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["kind"] != "match" || fields["entity_id"] != "m1" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if fields["error"] != "boom" {
		t.Fatalf("unexpected error field: %v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept: %v", fields)
	}
}

func TestLogger_ContextWithoutSpan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONWriter(LevelInfo, &buf)
	logger.InfoContext(context.Background(), "hello", "k", 1)

	line := buf.String()
	if !strings.Contains(line, `"msg":"hello"`) || !strings.Contains(line, `"k":1`) {
		t.Fatalf("unexpected json line: %s", line)
	}
	if strings.Contains(line, "trace_id") {
		t.Fatalf("trace fields must be omitted without a span: %s", line)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{"debug": LevelDebug, "": LevelInfo, "WARNING": LevelWarn, "error": LevelError}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) got=%v err=%v want=%v", raw, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
