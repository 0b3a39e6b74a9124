package core

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNoopLogger(t *testing.T) {
	logger := noopLogger{}
	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "key", "value")
	logger.Warn("warn message", "key", "value")
	logger.Error("error message", "key", "value")
}

func TestSlogLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlogLogger(slog.New(handler))

	svc := newTestService(t, WithLogger(logger))
	if _, _, _, err := svc.RegisterUser(context.Background(), RegisterProfile{Email: "log@x.com", Role: RoleStartup, StartupName: "Log"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.Contains(buf.String(), "register_user") {
		t.Fatalf("expected operation logged, got %q", buf.String())
	}

	// A failing operation logs at error level.
	buf.Reset()
	if _, _, _, err := svc.RegisterUser(context.Background(), RegisterProfile{Email: "log@x.com", Role: RoleStartup}); err == nil {
		t.Fatalf("expected duplicate email failure")
	}
	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "operation failed") {
		t.Fatalf("expected error log, got %q", out)
	}
}

func TestWithLoggerNilRestoresNoop(t *testing.T) {
	svc := newTestService(t, WithLogger(nil))
	if svc.logger == nil {
		t.Fatalf("logger must never be nil")
	}
	registerFounder(t, svc, "nil-logger@x.com", "NilLogger")
}
