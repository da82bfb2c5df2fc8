// Package config loads corec's compiler-wide switches from an optional YAML
// file, then lets environment variables override any field — the same
// two-layer shape the retrieved corpus's own YAML-config users
// (funvibe-funxy's internal/ext.Config) load a file with, but extended here
// with github.com/caarlos0/env/v6's struct-tag env overrides so a CI
// pipeline can tweak one switch without checking in a new file.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config holds corec's compiler-wide switches. Zero value is a usable
// default configuration.
type Config struct {
	// Color forces (true) or suppresses (false) ANSI diagnostic coloring.
	// A nil value (the default) means "autodetect via isatty".
	Color *bool `yaml:"color" env:"CORE_COLOR"`

	// TraceStages lists pipeline.Stage names to record into the trace
	// database when --trace-db is set; empty means trace every stage.
	TraceStages []string `yaml:"trace_stages" env:"CORE_TRACE_STAGES" envSeparator:","`

	// TraceDB is the default --trace-db path, overridable on the command
	// line.
	TraceDB string `yaml:"trace_db" env:"CORE_TRACE_DB"`

	// Watch is loaded from the file and environment like every other
	// field, but no corec command consults it: watching is turned on only
	// by the --watch flag.
	Watch bool `yaml:"watch" env:"CORE_WATCH"`
}

// Load reads path (if non-empty) as YAML into a Config, then applies any
// CORE_* environment variable overrides on top. An empty path is not an
// error — Load returns zero-value defaults, overridden by the environment
// alone, matching a from-scratch install with no config file checked in
// yet. A non-empty path naming a file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config: %s does not exist", path)
			}
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: applying environment overrides: %w", err)
	}

	return cfg, nil
}

// ColorEnabled resolves the effective color setting: the config's explicit
// Color override if set, otherwise autodetect reports whether fd looks like
// an interactive terminal (the same isatty-based rule internal/diag.AutoColor
// uses).
func (c *Config) ColorEnabled(autodetect func() bool) bool {
	if c.Color != nil {
		return *c.Color
	}
	return autodetect()
}

// TracesStage reports whether stage should be recorded given TraceStages;
// an empty list means every stage is traced.
func (c *Config) TracesStage(stage string) bool {
	if len(c.TraceStages) == 0 {
		return true
	}
	for _, s := range c.TraceStages {
		if s == stage {
			return true
		}
	}
	return false
}
