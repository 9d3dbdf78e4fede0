// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"grimm.is/denypurge/internal/config"
	"grimm.is/denypurge/internal/kernel"
	"grimm.is/denypurge/internal/logging"
	"grimm.is/denypurge/internal/metrics"
	"grimm.is/denypurge/internal/purge"
)

// NoRulesDeletedMessage is printed on stdout when a run deletes nothing.
const NoRulesDeletedMessage = "No rules deleted.  Connect to VPN first."

// Runner performs one purge run against a control channel.
type Runner struct {
	// Open acquires the control channel; defaults to kernel.Open.
	Open   func() (kernel.Kernel, error)
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner returns a Runner bound to the real kernel and process streams.
func NewRunner() *Runner {
	return &Runner{
		Open:   kernel.Open,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run opens the channel, purges deny rules and closes the channel.
// It returns the number of rules deleted. Logs go to Stderr; the
// user-facing result line goes to Stdout.
func (r *Runner) Run(cfg *config.Config) (int, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return 0, err
	}
	logger := logging.New(logging.Config{
		Level:  level,
		Output: r.Stderr,
		JSON:   cfg.Logging.JSON,
	}).WithFields(map[string]any{"run_id": uuid.NewString()})
	logging.SetDefault(logger)

	reg := metrics.NewRegistry()
	defer func() {
		if werr := reg.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			logger.Warn("metrics not written", "error", werr)
		}
	}()

	k, err := r.Open()
	if err != nil {
		reg.RunFinished(err)
		return 0, err
	}
	defer func() {
		if cerr := k.Close(); cerr != nil {
			logger.Warn("failed to close control socket", "error", cerr)
		}
	}()

	purger := purge.NewPurger(purge.Options{
		Allocator: purge.NewBufferAllocator(cfg.MaxTableBytes),
		Metrics:   reg,
		Logger:    logger,
		DryRun:    cfg.DryRun,
	})

	n, err := purger.PurgeDenyRules(k)
	reg.RunFinished(err)
	if err != nil {
		return 0, err
	}

	switch {
	case n == 0:
		fmt.Fprintln(r.Stdout, NoRulesDeletedMessage)
	case cfg.DryRun:
		fmt.Fprintf(r.Stdout, "%d deny rules would be deleted.\n", n)
	default:
		logger.Info("deleted deny rules", "count", n)
	}
	return n, nil
}
