// Package cli wires the swarm command line: the root command (and its
// "run" twin) drives a load test, "check" validates the configuration
// and scenario with an optional one-shot probe of the target, and
// "version" reports build information.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags "-X ...".
var (
	version = "dev"
	vcsRef  = "unknown"
)

// ExitError carries the process exit code a command decided on. Code 1
// means the run completed but failed its criteria, code 2 means the
// run could not be set up at all.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewRootCmd builds the swarm command tree. The root command runs the
// load test when invoked without a subcommand, so the container
// entrypoint stays a single exec line.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swarm",
		Short: "HTTP load testing harness",
		Long: `Swarm drives a population of virtual users against an HTTP service,
following a declarative scenario of weighted tasks and response checks,
and judges the run against latency and failure thresholds.

Configuration is resolved from defaults, a swarm.conf file, SWARM_*
environment variables and command line flags, in that order.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLoadTest,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "configuration file (default probes ./swarm.conf)")
	addRunFlags(cmd)

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the load test (the default when no subcommand is given)",
		Args:  cobra.NoArgs,
		RunE:  runLoadTest,
	}
	addRunFlags(cmd)
	return cmd
}

// addRunFlags registers the load test flags. They live on both the
// root command and the run subcommand, so "swarm" and "swarm run" are
// interchangeable.
func addRunFlags(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringP("scenario", "f", "", "scenario file to run")
	fl.StringP("host", "H", "", "base URL of the system under test")
	fl.IntP("users", "u", 0, "total number of virtual users")
	fl.Float64P("spawn-rate", "r", 0, "users started per second during ramp-up")
	fl.StringP("run-time", "t", "", "total run duration, e.g. 30s or 5m")
	fl.StringSliceP("tags", "T", nil, "only run tasks carrying one of these tags")
	fl.StringSlice("exclude-tags", nil, "skip tasks carrying one of these tags")
	fl.StringP("loglevel", "L", "", "log level: DEBUG, INFO, WARNING, ERROR or CRITICAL")
	fl.String("env", "", "logging profile: development, staging or production")
	fl.Bool("headless", true, "run without an interactive UI (the only supported mode)")
	fl.Bool("print-stats", false, "print the per-task stats table during the run")
	fl.Bool("only-summary", false, "suppress live output, print only the final summary")
	fl.String("csv", "", "write <prefix>_stats.csv, _failures.csv and _stats_history.csv")
	fl.String("html", "", "write an HTML report to this path")
	fl.String("json", "", "write the full JSON result to this path")
	fl.String("stop-timeout", "", "grace period for in-flight requests at shutdown")
	fl.Int64("seed", 0, "seed for deterministic task selection")
}

// RootCmd is the command tree used by main.
var RootCmd = NewRootCmd()

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := RootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
			}
			return exitErr.Code
		}
		// Flag and usage errors from cobra are setup failures.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}
