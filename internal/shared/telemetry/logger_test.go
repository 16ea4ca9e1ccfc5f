package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := SetLogger(zap.New(core))
	defer SetLogger(prev)

	Info("review.complete", map[string]any{
		"request_id": "req-1",
		"chars":      42,
	})
	Error("review.failed", map[string]any{
		"err": errors.New("boom"),
	})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" {
		t.Fatalf("unexpected request_id: %v", fields["request_id"])
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %s", entries[1].Level)
	}
	if entries[1].ContextMap()["err"] != "boom" {
		t.Fatalf("unexpected err field: %v", entries[1].ContextMap()["err"])
	}
}

func TestSetLoggerNilFallsBackToNop(t *testing.T) {
	prev := SetLogger(nil)
	defer SetLogger(prev)

	if L() == nil {
		t.Fatal("expected non-nil logger")
	}
	Warn("ignored", nil)
}
