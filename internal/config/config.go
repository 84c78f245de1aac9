// Package config resolves the runner configuration from built-in
// defaults, a swarm.conf file, SWARM_* environment variables and CLI
// flags, in that order of precedence.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DefaultConfFile is probed in the working directory when no explicit
// --config path is given.
const DefaultConfFile = "swarm.conf"

// EnvPrefix is shared by every environment override.
const EnvPrefix = "SWARM_"

// Config holds the fully resolved runner settings. The json tags shape
// the config echo embedded in exported run results.
type Config struct {
	// ScenarioFile points at the YAML or JSON scenario document.
	ScenarioFile string `json:"scenario"`

	// Host is the base URL every task path is resolved against.
	Host string `json:"host"`

	// Headless must stay true. The harness ships without an
	// interactive UI, so false is rejected during validation.
	Headless bool `json:"headless"`

	// Users is the total virtual user population to spawn.
	Users int `json:"users"`

	// SpawnRate is how many users start per second during ramp-up.
	SpawnRate float64 `json:"spawnRate"`

	// RunTime bounds the whole run, ramp-up included.
	RunTime time.Duration `json:"runTime"`

	// Tags restricts execution to tasks carrying at least one of
	// them. Empty means all tasks are eligible.
	Tags []string `json:"tags,omitempty"`

	// ExcludeTags removes matching tasks after Tags is applied.
	ExcludeTags []string `json:"excludeTags,omitempty"`

	// LogLevel is one of DEBUG, INFO, WARNING, ERROR, CRITICAL.
	LogLevel string `json:"logLevel"`

	// Env selects the logging profile: development, staging or
	// production.
	Env string `json:"env"`

	// PrintStats enables the periodic stats table during the run.
	PrintStats bool `json:"printStats"`

	// OnlySummary suppresses periodic output, leaving the final
	// summary only.
	OnlySummary bool `json:"onlySummary"`

	// CSVPrefix, when set, produces <prefix>_stats.csv,
	// <prefix>_failures.csv and <prefix>_stats_history.csv.
	CSVPrefix string `json:"csvPrefix,omitempty"`

	// HTMLPath, when set, is where the HTML report is written.
	HTMLPath string `json:"htmlPath,omitempty"`

	// JSONPath, when set, is where the JSON result is written.
	JSONPath string `json:"jsonPath,omitempty"`

	// StopTimeout bounds the wait for in-flight iterations at
	// shutdown. Zero cancels them immediately.
	StopTimeout time.Duration `json:"stopTimeout"`

	// Seed feeds the deterministic task selection.
	Seed int64 `json:"seed"`
}

// Defaults returns the built-in configuration, matching the values the
// harness ships with in swarm.conf.
func Defaults() *Config {
	return &Config{
		ScenarioFile: "scenarios/rest-api.yaml",
		Host:         "http://127.0.0.1:50000",
		Headless:     true,
		Users:        10,
		SpawnRate:    5,
		RunTime:      30 * time.Second,
		Tags:         []string{"rest_api", "fast"},
		LogLevel:     "INFO",
		Env:          "development",
		PrintStats:   true,
		OnlySummary:  true,
		StopTimeout:  0,
		Seed:         42,
	}
}

// ParseDuration accepts Go duration strings ("90s", "1h30m") and bare
// integers meaning seconds ("300").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (want e.g. \"30s\", \"1h30m\" or a number of seconds)", s)
	}
	return d, nil
}

// splitList splits a list value on commas and whitespace, dropping
// empty entries.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
