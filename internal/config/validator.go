package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/swarmload/swarm/internal/logging"
)

// ValidationError describes a single invalid setting.
type ValidationError struct {
	Key     string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Message)
}

// ValidationErrors collects every problem found in one pass so the
// user can fix them all at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return "invalid configuration: " + e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "invalid configuration (%d problems):", len(e))
	for i, err := range e {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err.Error())
	}
	return b.String()
}

func (e *ValidationErrors) add(key, format string, args ...interface{}) {
	*e = append(*e, ValidationError{Key: key, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the resolved configuration and reports every problem
// found, not just the first.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.ScenarioFile == "" {
		errs.add("scenario", "a scenario file is required")
	}

	if c.Host == "" {
		errs.add("host", "a target host is required")
	} else if u, err := url.Parse(c.Host); err != nil {
		errs.add("host", "invalid URL %q", c.Host)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs.add("host", "URL scheme must be http or https, got %q", u.Scheme)
	} else if u.Host == "" {
		errs.add("host", "URL %q has no host", c.Host)
	}

	if !c.Headless {
		errs.add("headless", "interactive mode is not supported; the harness always runs headless")
	}

	if c.Users < 1 {
		errs.add("users", "must be at least 1, got %d", c.Users)
	}
	if c.SpawnRate <= 0 {
		errs.add("spawn-rate", "must be greater than 0, got %g", c.SpawnRate)
	}
	if c.RunTime <= 0 {
		errs.add("run-time", "must be greater than 0, got %s", c.RunTime)
	}
	if c.StopTimeout < 0 {
		errs.add("stop-timeout", "cannot be negative, got %s", c.StopTimeout)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs.add("loglevel", "%v", err)
	}
	switch c.Env {
	case logging.EnvDevelopment, logging.EnvStaging, logging.EnvProduction:
	default:
		errs.add("env", "must be development, staging or production, got %q", c.Env)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
