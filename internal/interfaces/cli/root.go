// Package cli implements the combirx command-line interface.  The run
// command executes a full discovery search locally, without any backing
// services, which is the workflow for one-off analyses and batch scripts.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	LogLevel string
	Quiet    bool
}

// NewRootCommand creates the root cobra command with global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "combirx",
		Short: "CombiRx-Discovery CLI — multi-objective drug combination discovery",
		Long: "CombiRx-Discovery searches for synergistic drug combinations with a\n" +
			"multi-objective evolutionary algorithm over drug-distance matrices and a\n" +
			"protein-protein interaction network.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress progress output")

	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newCLILogger builds a console logger honoring the global flags.
func newCLILogger(opts *RootOptions) logging.Logger {
	if opts.Quiet {
		return logging.NewNopLogger()
	}
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       opts.LogLevel,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return logging.NewNopLogger()
	}
	return logger
}

//Personal.AI order the ending
