package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nplang/corec/internal/config"
)

func TestLoad_NoPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Color != nil {
		t.Fatalf("expected Color to default to nil (autodetect), got %v", *cfg.Color)
	}
	if cfg.Watch {
		t.Fatalf("expected Watch to default to false")
	}
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestLoad_ParsesYAMLFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corec.yaml")
	content := "color: true\nwatch: true\ntrace_db: run.sqlite\ntrace_stages:\n  - bind\n  - check\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Color == nil || !*cfg.Color {
		t.Fatalf("expected Color to be true, got %v", cfg.Color)
	}
	if !cfg.Watch {
		t.Fatalf("expected Watch to be true")
	}
	if cfg.TraceDB != "run.sqlite" {
		t.Fatalf("expected TraceDB to be run.sqlite, got %q", cfg.TraceDB)
	}
	if !cfg.TracesStage("bind") || cfg.TracesStage("ir") {
		t.Fatalf("expected TraceStages to restrict tracing to bind/check, got %v", cfg.TraceStages)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corec.yaml")
	if err := os.WriteFile(path, []byte("trace_db: from-file.sqlite\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	t.Setenv("CORE_TRACE_DB", "from-env.sqlite")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TraceDB != "from-env.sqlite" {
		t.Fatalf("expected environment override to win, got %q", cfg.TraceDB)
	}
}

func TestColorEnabled_FallsBackToAutodetectWhenUnset(t *testing.T) {
	cfg := &config.Config{}
	if !cfg.ColorEnabled(func() bool { return true }) {
		t.Fatalf("expected autodetect result to be used when Color is unset")
	}

	enabled := false
	cfg.Color = &enabled
	if cfg.ColorEnabled(func() bool { return true }) {
		t.Fatalf("expected explicit Color override to win over autodetect")
	}
}
