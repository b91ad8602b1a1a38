package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	t.Parallel()

	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithRun(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)

	WithRun(zap.New(core), "4a1f").Info("documents screened")
	WithRun(zap.New(core), "  ").Info("no run")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if got := entries[0].ContextMap()[FieldRunID]; got != "4a1f" {
		t.Fatalf("expected run id 4a1f, got %v", got)
	}
	if _, ok := entries[1].ContextMap()[FieldRunID]; ok {
		t.Fatalf("blank run id must not be attached")
	}

	if WithRun(nil, "4a1f") == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
}

func TestWithCommonFields(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "model-x").Info("review")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldProvider] != "gemini" || ctx[FieldModel] != "model-x" {
		t.Fatalf("unexpected fields: %v", ctx)
	}

	if empty := CommonFields("", ""); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, opts := range []Options{{}, {JSON: true, Debug: true, RunID: "r1"}} {
		logger, err := New(opts)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", opts, err)
		}
		if logger.Core().Enabled(zapcore.DebugLevel) != opts.Debug {
			t.Fatalf("unexpected debug level for %+v", opts)
		}
	}
}
