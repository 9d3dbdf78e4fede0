// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"github.com/spf13/cobra"

	"grimm.is/denypurge/internal/config"
	"grimm.is/denypurge/internal/errors"
)

// NewRootCommand builds the denypurge command around runner.
// Flags override values from the config file.
func NewRootCommand(runner *Runner) *cobra.Command {
	var (
		configPath  string
		dryRun      bool
		logLevel    string
		logJSON     bool
		metricsFile string
	)

	c := &cobra.Command{
		Use:   "denypurge",
		Short: "Delete every deny rule from the ipfw firewall",
		Long: `denypurge reads the kernel's ipfw rule table over a raw socket and
deletes each rule whose action is deny. It must run as root.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}

			flags := c.Flags()
			if flags.Changed("dry-run") {
				cfg.DryRun = dryRun
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if flags.Changed("log-json") {
				cfg.Logging.JSON = logJSON
			}
			if flags.Changed("metrics-textfile") {
				cfg.Metrics.Textfile = metricsFile
			}
			if errs := cfg.Validate(); errs.HasErrors() {
				return errors.Wrap(errs, errors.KindConfig, "invalid options")
			}

			runner.Stdout = c.OutOrStdout()
			runner.Stderr = c.ErrOrStderr()
			_, err = runner.Run(cfg)
			return err
		},
	}

	f := c.Flags()
	f.StringVarP(&configPath, "config", "c", "", "HCL configuration file")
	f.BoolVarP(&dryRun, "dry-run", "n", false, "list deny rules without deleting them")
	f.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	f.BoolVar(&logJSON, "log-json", false, "write logs as JSON lines")
	f.StringVar(&metricsFile, "metrics-textfile", "", "write Prometheus metrics to this .prom file")

	return c
}
