// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"grimm.is/denypurge/internal/ipfw"
	"grimm.is/denypurge/internal/logging"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate validates the entire configuration.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.SchemaVersion != "" && c.SchemaVersion != CurrentSchemaVersion {
		errs = append(errs, ValidationError{
			Field:   "schema_version",
			Message: fmt.Sprintf("unsupported version %q (expected %q)", c.SchemaVersion, CurrentSchemaVersion),
		})
	}

	// The first offer is one record plus a byte; anything smaller can never succeed.
	if minBytes := ipfw.DefaultLayout.Size + 1; c.MaxTableBytes < minBytes {
		errs = append(errs, ValidationError{
			Field:   "max_table_bytes",
			Message: fmt.Sprintf("must be at least %d, got %d", minBytes, c.MaxTableBytes),
		})
	}

	if c.Logging != nil {
		if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
			errs = append(errs, ValidationError{Field: "logging.level", Message: err.Error()})
		}
	}

	if c.Metrics != nil && c.Metrics.Textfile != "" {
		if filepath.Ext(c.Metrics.Textfile) != ".prom" {
			errs = append(errs, ValidationError{
				Field:   "metrics.textfile",
				Message: "textfile collector only reads files ending in .prom",
			})
		}
	}

	return errs
}
