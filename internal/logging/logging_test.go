package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New("loud", ""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewBuildsAtLevel(t *testing.T) {
	logger, err := New("warn", "console")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("debug should be disabled at warn level")
	}
}

func TestAdapterForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	adapter := NewAdapter(zap.New(core))
	adapter.Warn("operation rejected", "operation", "hold_batch", "entity_id", "B-1")
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "operation rejected" {
		t.Fatalf("unexpected message %q", entries[0].Message)
	}
	ctx := entries[0].ContextMap()
	if ctx["operation"] != "hold_batch" || ctx["entity_id"] != "B-1" {
		t.Fatalf("unexpected fields %+v", ctx)
	}
}
