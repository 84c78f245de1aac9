package config

import (
	"fmt"
	"os"
	"strconv"
)

// Overrides carries CLI flag values. Nil fields were not set on the
// command line and leave the lower-precedence value in place.
type Overrides struct {
	ScenarioFile *string
	Host         *string
	Headless     *bool
	Users        *int
	SpawnRate    *float64
	RunTime      *string
	Tags         *[]string
	ExcludeTags  *[]string
	LogLevel     *string
	Env          *string
	PrintStats   *bool
	OnlySummary  *bool
	CSVPrefix    *string
	HTMLPath     *string
	JSONPath     *string
	StopTimeout  *string
	Seed         *int64
}

// envKeys maps the suffix of each SWARM_* variable to its conf key.
// Iterated in slice order so behavior is deterministic.
var envKeys = []struct{ env, key string }{
	{"SCENARIO", "scenario"},
	{"HOST", "host"},
	{"HEADLESS", "headless"},
	{"USERS", "users"},
	{"SPAWN_RATE", "spawn-rate"},
	{"RUN_TIME", "run-time"},
	{"TAGS", "tags"},
	{"EXCLUDE_TAGS", "exclude-tags"},
	{"LOGLEVEL", "loglevel"},
	{"ENV", "env"},
	{"PRINT_STATS", "print-stats"},
	{"ONLY_SUMMARY", "only-summary"},
	{"CSV", "csv"},
	{"HTML", "html"},
	{"JSON", "json"},
	{"STOP_TIMEOUT", "stop-timeout"},
	{"SEED", "seed"},
}

// Load resolves the configuration. confPath may be empty, in which
// case swarm.conf is probed in the working directory and silently
// skipped when absent; an explicit path must exist.
func Load(confPath string, ov Overrides) (*Config, error) {
	cfg := Defaults()

	explicit := confPath != ""
	if !explicit {
		confPath = DefaultConfFile
	}
	if err := applyConfFile(cfg, confPath, explicit); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, ov); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyConfFile(cfg *Config, path string, explicit bool) error {
	entries, err := parseConfFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("config file: %w", err)
	}
	for _, e := range entries {
		if err := applyKey(cfg, e.key, e.value); err != nil {
			return fmt.Errorf("%s:%d: %w", path, e.line, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	for _, ek := range envKeys {
		name := EnvPrefix + ek.env
		value, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := applyKey(cfg, ek.key, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func applyOverrides(cfg *Config, ov Overrides) error {
	if ov.ScenarioFile != nil {
		cfg.ScenarioFile = *ov.ScenarioFile
	}
	if ov.Host != nil {
		cfg.Host = *ov.Host
	}
	if ov.Headless != nil {
		cfg.Headless = *ov.Headless
	}
	if ov.Users != nil {
		cfg.Users = *ov.Users
	}
	if ov.SpawnRate != nil {
		cfg.SpawnRate = *ov.SpawnRate
	}
	if ov.RunTime != nil {
		d, err := ParseDuration(*ov.RunTime)
		if err != nil {
			return fmt.Errorf("--run-time: %w", err)
		}
		cfg.RunTime = d
	}
	if ov.Tags != nil {
		cfg.Tags = *ov.Tags
	}
	if ov.ExcludeTags != nil {
		cfg.ExcludeTags = *ov.ExcludeTags
	}
	if ov.LogLevel != nil {
		cfg.LogLevel = *ov.LogLevel
	}
	if ov.Env != nil {
		cfg.Env = *ov.Env
	}
	if ov.PrintStats != nil {
		cfg.PrintStats = *ov.PrintStats
	}
	if ov.OnlySummary != nil {
		cfg.OnlySummary = *ov.OnlySummary
	}
	if ov.CSVPrefix != nil {
		cfg.CSVPrefix = *ov.CSVPrefix
	}
	if ov.HTMLPath != nil {
		cfg.HTMLPath = *ov.HTMLPath
	}
	if ov.JSONPath != nil {
		cfg.JSONPath = *ov.JSONPath
	}
	if ov.StopTimeout != nil {
		d, err := ParseDuration(*ov.StopTimeout)
		if err != nil {
			return fmt.Errorf("--stop-timeout: %w", err)
		}
		cfg.StopTimeout = d
	}
	if ov.Seed != nil {
		cfg.Seed = *ov.Seed
	}
	return nil
}

// applyKey sets one configuration value from its textual form. The
// same code path serves conf file entries and environment variables.
func applyKey(cfg *Config, key, value string) error {
	switch key {
	case "scenario":
		cfg.ScenarioFile = value
	case "host":
		cfg.Host = value
	case "headless":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("headless: invalid boolean %q", value)
		}
		cfg.Headless = b
	case "users":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("users: invalid integer %q", value)
		}
		cfg.Users = n
	case "spawn-rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("spawn-rate: invalid number %q", value)
		}
		cfg.SpawnRate = f
	case "run-time":
		d, err := ParseDuration(value)
		if err != nil {
			return fmt.Errorf("run-time: %w", err)
		}
		cfg.RunTime = d
	case "tags":
		cfg.Tags = splitList(value)
	case "exclude-tags":
		cfg.ExcludeTags = splitList(value)
	case "loglevel":
		cfg.LogLevel = value
	case "env":
		cfg.Env = value
	case "print-stats":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("print-stats: invalid boolean %q", value)
		}
		cfg.PrintStats = b
	case "only-summary":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("only-summary: invalid boolean %q", value)
		}
		cfg.OnlySummary = b
	case "csv":
		cfg.CSVPrefix = value
	case "html":
		cfg.HTMLPath = value
	case "json":
		cfg.JSONPath = value
	case "stop-timeout":
		d, err := ParseDuration(value)
		if err != nil {
			return fmt.Errorf("stop-timeout: %w", err)
		}
		cfg.StopTimeout = d
	case "seed":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("seed: invalid integer %q", value)
		}
		cfg.Seed = n
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}
