// Package scenario defines and loads the declarative documents that
// describe what the virtual users do: user classes, weighted tasks,
// tag sets, wait models and per-response checks.
package scenario

import (
	"strings"

	"github.com/swarmload/swarm/pkg/jsonschema"
)

// Scenario is the root document.
type Scenario struct {
	Name       string            `json:"name" yaml:"name"`
	Variables  map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Users      []*UserClass      `json:"users" yaml:"users"`
	Thresholds []string          `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// UserClass describes one population of identical virtual users.
// Weight controls how the configured user count is split across
// classes.
type UserClass struct {
	Name   string  `json:"name" yaml:"name"`
	Weight int     `json:"weight,omitempty" yaml:"weight,omitempty"`
	Wait   string  `json:"wait,omitempty" yaml:"wait,omitempty"`
	Tasks  []*Task `json:"tasks" yaml:"tasks"`
}

// Task is one weighted, tagged request with its checks.
type Task struct {
	Name    string   `json:"name" yaml:"name"`
	Weight  int      `json:"weight,omitempty" yaml:"weight,omitempty"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Request Request  `json:"request" yaml:"request"`
	Checks  []Check  `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// Request is the HTTP request template of a task. The path, header
// values and body may reference {{variables}}.
type Request struct {
	Method  string            `json:"method,omitempty" yaml:"method,omitempty"`
	Path    string            `json:"path" yaml:"path"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`
}

// Supported check types.
const (
	CheckStatus       = "status"
	CheckJSONErrorKey = "json_error_key"
	CheckJSONSchema   = "json_schema"
)

// Check is a per-response assertion. A failing check marks the sample
// as failed; the user keeps iterating.
type Check struct {
	Type string `json:"type" yaml:"type"`

	// Max is the highest acceptable status code (status checks).
	Max int `json:"max,omitempty" yaml:"max,omitempty"`

	// Key is the JSON path probed by json_error_key checks. The
	// sample fails when the key holds anything but null.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	// File points at a JSON schema document (json_schema checks).
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// Schema is an inline schema, the alternative to File.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`

	compiled *jsonschema.Schema
}

// CompiledSchema returns the schema compiled during Validate, or nil
// for non-schema checks.
func (c *Check) CompiledSchema() *jsonschema.Schema {
	return c.compiled
}

// applyDefaults fills the optional fields the document may omit.
func (s *Scenario) applyDefaults() {
	for _, u := range s.Users {
		if u.Weight == 0 {
			u.Weight = 1
		}
		for _, t := range u.Tasks {
			if t.Weight == 0 {
				t.Weight = 1
			}
			if t.Request.Method == "" {
				t.Request.Method = "GET"
			}
			t.Request.Method = strings.ToUpper(t.Request.Method)
			for i := range t.Checks {
				c := &t.Checks[i]
				switch c.Type {
				case CheckStatus:
					if c.Max == 0 {
						c.Max = 399
					}
				case CheckJSONErrorKey:
					if c.Key == "" {
						c.Key = "error"
					}
				}
			}
		}
	}
}

// TaskCount returns the number of tasks across all user classes.
func (s *Scenario) TaskCount() int {
	n := 0
	for _, u := range s.Users {
		n += len(u.Tasks)
	}
	return n
}
