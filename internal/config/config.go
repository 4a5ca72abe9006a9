// Package config loads the daemon's TOML configuration file.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
)

// EngineKind selects which engine.Factory the daemon wires into its process
// Manager.
type EngineKind string

const (
	EngineScript  EngineKind = "script"
	EngineGraphQL EngineKind = "graphql"
)

// Config is the daemon's TOML configuration.
type Config struct {
	// Engine selects the linting engine hosted by each worker process.
	Engine EngineKind `toml:"engine"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// MaxRecoveries caps consecutive crash-recovery attempts within a single
	// editorChangedVisibilityAsync call. Zero means unbounded.
	MaxRecoveries int `toml:"max_recoveries"`
	// SchemaPaths lists GraphQL schema files or directories/globs to load
	// when Engine is "graphql". Ignored otherwise.
	SchemaPaths []string `toml:"schema_paths"`
	// CrashLogPath is the sqlite database path for the observability-only
	// crash ledger. Empty disables the crash log.
	CrashLogPath string `toml:"crash_log_path"`
	// AllowRedeclaration is the script engine's default per-document
	// redeclaration policy. A document can opt into allowing redeclaration
	// with its own directive; it cannot opt back out when this is true.
	AllowRedeclaration bool `toml:"allow_redeclaration"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine:        EngineScript,
		LogLevel:      "info",
		MaxRecoveries: 8,
		CrashLogPath:  "",
	}
}

// Load reads and decodes a TOML config file, starting from Default so a
// partial file only overrides what it sets.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if cfg.Engine != EngineScript && cfg.Engine != EngineGraphQL {
		return Config{}, fmt.Errorf("config: unknown engine %q", cfg.Engine)
	}
	return cfg, nil
}

// SlogLevel translates LogLevel into a slog.Level, defaulting to Info for an
// unrecognized or empty value.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
