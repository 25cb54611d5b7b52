package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/campusbuddy/campusbuddy-go/internal/ctxutil"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("chat").Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
	if entry["module"] != "chat" {
		t.Errorf("module = %v, want chat", entry["module"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("missing timestamp key")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn record should pass at warn level")
	}
}

func TestWarnLevelRenaming(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Warn("attention")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want warning", entry["level"])
	}
}

func TestContextHandler_RequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithRequestID(context.Background(), "req-42")
	ctx = ctxutil.WithToolName(ctx, "document-query")
	log.InfoContext(ctx, "processing")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", entry["request_id"])
	}
	if entry["tool"] != "document-query" {
		t.Errorf("tool = %v, want document-query", entry["tool"])
	}
}

func TestMultiHandler_FanOut(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := slog.NewJSONHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelDebug})
	h2 := slog.NewJSONHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelError})

	log := slog.New(NewMultiHandler(h1, h2))
	log.Info("only first")
	log.Error("both")

	if !strings.Contains(buf1.String(), "only first") || !strings.Contains(buf1.String(), "both") {
		t.Error("debug handler should receive both records")
	}
	if strings.Contains(buf2.String(), "only first") {
		t.Error("error handler should not receive info record")
	}
	if !strings.Contains(buf2.String(), "both") {
		t.Error("error handler should receive error record")
	}
}

func TestMultiHandler_SkipsNil(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	log := slog.New(NewMultiHandler(nil, h, nil))
	log.Info("survives")

	if !strings.Contains(buf.String(), "survives") {
		t.Error("record should reach the non-nil handler")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithFields(map[string]any{"a": 1, "b": "two"}).Info("multi")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["a"] != float64(1) || entry["b"] != "two" {
		t.Errorf("fields not propagated: %v", entry)
	}
}
