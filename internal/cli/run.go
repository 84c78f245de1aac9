package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/swarmload/swarm/internal/config"
	"github.com/swarmload/swarm/internal/logging"
	"github.com/swarmload/swarm/internal/output"
	"github.com/swarmload/swarm/internal/report"
	"github.com/swarmload/swarm/internal/runner"
	"github.com/swarmload/swarm/internal/scenario"
)

func runLoadTest(cmd *cobra.Command, args []string) error {
	confPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(confPath, collectOverrides(cmd))
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	log, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	defer log.Sync()

	scn, err := scenario.Load(cfg.ScenarioFile)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	console := output.New(output.Config{
		Writer:      cmd.OutOrStdout(),
		PrintStats:  cfg.PrintStats,
		OnlySummary: cfg.OnlySummary,
	})

	r, err := runner.New(runner.Options{
		Config:     cfg,
		Scenario:   scn,
		Logger:     log,
		OnProgress: console.PrintProgress,
	})
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	console.PrintHeader(output.RunInfo{
		Scenario:   scn.Name,
		Host:       cfg.Host,
		Users:      cfg.Users,
		SpawnRate:  cfg.SpawnRate,
		RunTime:    cfg.RunTime,
		Thresholds: r.Thresholds(),
	})

	// SIGINT and SIGTERM interrupt the run; users wind down within the
	// stop timeout and the summary still covers what ran.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A run that started and then errored is a failed run, not a usage
	// problem.
	res, err := r.Run(ctx)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	console.PrintSummary(res)

	reportErr := writeReports(cfg, res, log)
	if !res.Passed {
		return &ExitError{Code: 1}
	}
	if reportErr != nil {
		return &ExitError{Code: 1, Err: reportErr}
	}
	return nil
}

// collectOverrides lifts every flag the user actually set into the
// config override set, leaving the rest to the conf file and
// environment.
func collectOverrides(cmd *cobra.Command) config.Overrides {
	var ov config.Overrides
	fl := cmd.Flags()

	if fl.Changed("scenario") {
		v, _ := fl.GetString("scenario")
		ov.ScenarioFile = &v
	}
	if fl.Changed("host") {
		v, _ := fl.GetString("host")
		ov.Host = &v
	}
	if fl.Changed("headless") {
		v, _ := fl.GetBool("headless")
		ov.Headless = &v
	}
	if fl.Changed("users") {
		v, _ := fl.GetInt("users")
		ov.Users = &v
	}
	if fl.Changed("spawn-rate") {
		v, _ := fl.GetFloat64("spawn-rate")
		ov.SpawnRate = &v
	}
	if fl.Changed("run-time") {
		v, _ := fl.GetString("run-time")
		ov.RunTime = &v
	}
	if fl.Changed("tags") {
		v, _ := fl.GetStringSlice("tags")
		ov.Tags = &v
	}
	if fl.Changed("exclude-tags") {
		v, _ := fl.GetStringSlice("exclude-tags")
		ov.ExcludeTags = &v
	}
	if fl.Changed("loglevel") {
		v, _ := fl.GetString("loglevel")
		ov.LogLevel = &v
	}
	if fl.Changed("env") {
		v, _ := fl.GetString("env")
		ov.Env = &v
	}
	if fl.Changed("print-stats") {
		v, _ := fl.GetBool("print-stats")
		ov.PrintStats = &v
	}
	if fl.Changed("only-summary") {
		v, _ := fl.GetBool("only-summary")
		ov.OnlySummary = &v
	}
	if fl.Changed("csv") {
		v, _ := fl.GetString("csv")
		ov.CSVPrefix = &v
	}
	if fl.Changed("html") {
		v, _ := fl.GetString("html")
		ov.HTMLPath = &v
	}
	if fl.Changed("json") {
		v, _ := fl.GetString("json")
		ov.JSONPath = &v
	}
	if fl.Changed("stop-timeout") {
		v, _ := fl.GetString("stop-timeout")
		ov.StopTimeout = &v
	}
	if fl.Changed("seed") {
		v, _ := fl.GetInt64("seed")
		ov.Seed = &v
	}
	return ov
}

// writeReports produces every artifact the configuration asks for. A
// failed artifact is logged and the remaining ones are still written.
func writeReports(cfg *config.Config, res *runner.Result, log *zap.Logger) error {
	var firstErr error
	record := func(kind, path string, err error) {
		if err != nil {
			log.Error("writing report failed", zap.String("kind", kind), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		log.Info("report written", zap.String("kind", kind), zap.String("path", path))
	}

	if cfg.CSVPrefix != "" {
		record("csv", cfg.CSVPrefix+"_*.csv", report.WriteCSV(res, cfg.CSVPrefix))
	}
	if cfg.HTMLPath != "" {
		record("html", cfg.HTMLPath, report.WriteHTML(res, cfg.HTMLPath))
	}
	if cfg.JSONPath != "" {
		record("json", cfg.JSONPath, report.WriteJSON(res, cfg.JSONPath))
	}
	return firstErr
}
