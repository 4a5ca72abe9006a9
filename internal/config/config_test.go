package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultIsScriptEngine(t *testing.T) {
	cfg := Default()
	if cfg.Engine != EngineScript {
		t.Fatalf("expected default engine %q, got %q", EngineScript, cfg.Engine)
	}
	if cfg.MaxRecoveries != 8 {
		t.Fatalf("expected default max_recoveries 8, got %d", cfg.MaxRecoveries)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quicklint.toml")
	contents := "engine = \"graphql\"\nlog_level = \"debug\"\nmax_recoveries = 3\nschema_paths = [\"schema.graphql\"]\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine != EngineGraphQL {
		t.Fatalf("expected graphql engine, got %q", cfg.Engine)
	}
	if cfg.SlogLevel().String() != "DEBUG" {
		t.Fatalf("expected debug level, got %v", cfg.SlogLevel())
	}
	if cfg.MaxRecoveries != 3 {
		t.Fatalf("expected max_recoveries 3, got %d", cfg.MaxRecoveries)
	}
	if len(cfg.SchemaPaths) != 1 || cfg.SchemaPaths[0] != "schema.graphql" {
		t.Fatalf("expected one schema path, got %v", cfg.SchemaPaths)
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quicklint.toml")
	if err := os.WriteFile(path, []byte("engine = \"cobol\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown engine")
	}
}
