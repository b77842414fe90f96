package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newBufLogger(level slog.Level) (*bytes.Buffer, *slog.Logger) {
	var buf bytes.Buffer
	return &buf, slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level}))
}

func TestWithLoggerRoundTrip(t *testing.T) {
	_, logger := newBufLogger(slog.LevelDebug)
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatal("context did not return the stored logger")
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected the default logger, got nil")
	}
}

func TestInfoWritesAttrs(t *testing.T) {
	buf, logger := newBufLogger(slog.LevelDebug)
	ctx := WithLogger(context.Background(), logger)

	Info(ctx, "session ready", "provider", "gemini")

	out := buf.String()
	if !strings.Contains(out, "session ready") || !strings.Contains(out, "provider=gemini") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "level=INFO") {
		t.Fatalf("output = %q", out)
	}
}

func TestErrorAttachesErrorAttr(t *testing.T) {
	buf, logger := newBufLogger(slog.LevelDebug)
	ctx := WithLogger(context.Background(), logger)

	Error(ctx, "turn failed", errors.New("kaput"), "round", 0)

	out := buf.String()
	if !strings.Contains(out, "error=kaput") || !strings.Contains(out, "round=0") {
		t.Fatalf("output = %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf, logger := newBufLogger(slog.LevelInfo)
	ctx := WithLogger(context.Background(), logger)

	Debug(ctx, "too quiet")
	if buf.Len() != 0 {
		t.Fatalf("debug leaked through an info handler: %q", buf.String())
	}

	Warn(ctx, "loud enough")
	if !strings.Contains(buf.String(), "loud enough") {
		t.Fatalf("output = %q", buf.String())
	}
}
