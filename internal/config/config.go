// Package config loads the engine's recognized configuration options.
//
// Unlike the rest of the ambient stack, the on-disk format here is fixed by
// the query surface contract: a single pretty-printed JSON object with a
// small set of recognized keys (see Config). encoding/json is used directly
// rather than a config library because the shape is load-bearing for
// external tooling (editor plugins write this file too) and there is no
// layering, env-var precedence table, or schema migration to justify one.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"contextpilot/internal/logging"
)

// Config holds the recognized, top-level options for the engine.
type Config struct {
	// RevisionWalkLimit caps how many ancestor revisions the legacy
	// blame-walk variants follow. Only consulted by that alternate code
	// path, never by the diff-replay engine.
	RevisionWalkLimit int `json:"revision_walk_limit,omitempty"`

	// OutputCountThreshold caps items returned by authors/co_edited_files.
	OutputCountThreshold int `json:"output_count_threshold,omitempty"`

	// MaxLinesPerShard bounds how many line entries a single shard file
	// may hold before ShardStore opens a new one.
	MaxLinesPerShard int `json:"max_lines_per_shard,omitempty"`

	// Logging controls the category-based file logger (see internal/logging).
	// It is ambient configuration, not part of the query-surface contract,
	// but travels in the same file for operator convenience.
	Logging LoggingConfig `json:"logging,omitempty"`
}

// Defaults per §6 of the query surface contract.
const (
	DefaultRevisionWalkLimit    = 5
	DefaultOutputCountThreshold = 10
	DefaultMaxLinesPerShard     = 30
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		RevisionWalkLimit:    DefaultRevisionWalkLimit,
		OutputCountThreshold: DefaultOutputCountThreshold,
		MaxLinesPerShard:     DefaultMaxLinesPerShard,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a JSON file, filling unset fields with
// defaults. A missing file is not an error: the caller gets defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.Get(logging.CategoryBoot).Debug("loading config from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Get(logging.CategoryBoot).Info("config file not found, using defaults: %s", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes configuration as pretty-printed JSON, creating parent
// directories as needed. The write is a plain os.WriteFile, not an atomic
// temp-file rename; this is operator-facing config, written rarely and not
// read concurrently with a write.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.RevisionWalkLimit < 1 {
		c.RevisionWalkLimit = DefaultRevisionWalkLimit
	}
	if c.OutputCountThreshold < 1 {
		c.OutputCountThreshold = DefaultOutputCountThreshold
	}
	if c.MaxLinesPerShard < 1 {
		c.MaxLinesPerShard = DefaultMaxLinesPerShard
	}
}

// Validate checks that recognized options hold acceptable values.
func (c *Config) Validate() error {
	if c.RevisionWalkLimit < 1 {
		return fmt.Errorf("revision_walk_limit must be >= 1")
	}
	if c.OutputCountThreshold < 1 {
		return fmt.Errorf("output_count_threshold must be >= 1")
	}
	if c.MaxLinesPerShard < 1 {
		return fmt.Errorf("max_lines_per_shard must be >= 1")
	}
	return nil
}
