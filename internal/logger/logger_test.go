package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, tt := range []struct {
		json, debug bool
	}{
		{false, false},
		{true, false},
		{true, true},
	} {
		l, err := New(tt.json, tt.debug)
		if err != nil {
			t.Fatalf("New(%v, %v): %v", tt.json, tt.debug, err)
		}
		if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
			t.Fatalf("debug enabled = %v, want %v", got, tt.debug)
		}
	}
}

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  openai  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "provider" || fields[0].String != "openai" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithFields(zap.New(core), zap.String("foo", "bar")).Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if ctx := entries[0].ContextMap(); ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	// A nil logger falls back to a no-op one.
	WithFields(nil, zap.String("baz", "qux")).Info("another log")
}

func TestAIFields(t *testing.T) {
	fields := AIFields("  gemini  ", "gemini-2.5-flash")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != FieldProvider || fields[0].String != "gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}
	if fields[1].Key != FieldModel || fields[1].String != "gemini-2.5-flash" {
		t.Fatalf("unexpected model field: %+v", fields[1])
	}

	if empty := AIFields("", ""); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithRunAndCandidate(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithRun(WithAI(zap.New(core), "openai", "gpt-4o-mini"), "run-1", "job-1").Info("scored", Candidate("c1"))

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	want := map[string]string{
		FieldProvider:    "openai",
		FieldModel:       "gpt-4o-mini",
		FieldRunID:       "run-1",
		FieldJobID:       "job-1",
		FieldCandidateID: "c1",
	}
	for k, v := range want {
		if ctx[k] != v {
			t.Fatalf("field %s = %v, want %s", k, ctx[k], v)
		}
	}
}
