// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config loads the optional denypurge HCL configuration file.
package config

import (
	"grimm.is/denypurge/internal/purge"
)

// CurrentSchemaVersion defines the current schema version of the configuration.
const CurrentSchemaVersion = "1.0"

// Config is the top-level structure of a denypurge configuration file.
// Every field is optional; an absent file is equivalent to DefaultConfig.
type Config struct {
	// Schema version for backward compatibility.
	// @default: "1.0"
	SchemaVersion string `hcl:"schema_version,optional" json:"schema_version,omitempty"`

	// Report deny rules without deleting them.
	// @default: false
	DryRun bool `hcl:"dry_run,optional" json:"dry_run,omitempty"`

	// Largest rule table buffer, in bytes, the fetcher may allocate.
	// @default: 16777216
	MaxTableBytes int `hcl:"max_table_bytes,optional" json:"max_table_bytes,omitempty"`

	Logging *LoggingConfig `hcl:"logging,block" json:"logging,omitempty"`
	Metrics *MetricsConfig `hcl:"metrics,block" json:"metrics,omitempty"`
}

// LoggingConfig controls diagnostic output on stderr.
type LoggingConfig struct {
	// @enum: debug, info, warn, error
	// @default: "warn"
	Level string `hcl:"level,optional" json:"level,omitempty"`
	// Emit JSON lines instead of console lines.
	JSON bool `hcl:"json,optional" json:"json,omitempty"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	// Path for node_exporter's textfile collector. Empty disables metrics.
	Textfile string `hcl:"textfile,optional" json:"textfile,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		SchemaVersion: CurrentSchemaVersion,
		MaxTableBytes: purge.DefaultMaxTableBytes,
		Logging: &LoggingConfig{
			Level: "warn",
		},
		Metrics: &MetricsConfig{},
	}
}

// applyDefaults fills fields a file left unset.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.SchemaVersion == "" {
		c.SchemaVersion = def.SchemaVersion
	}
	if c.MaxTableBytes == 0 {
		c.MaxTableBytes = def.MaxTableBytes
	}
	if c.Logging == nil {
		c.Logging = def.Logging
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Metrics == nil {
		c.Metrics = def.Metrics
	}
}
