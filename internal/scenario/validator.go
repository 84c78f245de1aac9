package scenario

import (
	"fmt"
	"os"
	"strings"

	"github.com/swarmload/swarm/pkg/jsonschema"
)

// ValidationError describes one invalid piece of a scenario document,
// located by a path like "users[0].tasks[2]".
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return "invalid scenario: " + e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "invalid scenario (%d problems):", len(e))
	for i, err := range e {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err.Error())
	}
	return b.String()
}

func (e *ValidationErrors) add(path, format string, args ...interface{}) {
	*e = append(*e, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

var validMethods = map[string]bool{
	"GET":     true,
	"HEAD":    true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"OPTIONS": true,
}

// Validate checks the document structurally and compiles every JSON
// schema referenced by a check, reporting all problems at once.
// Schema files are read here, so a scenario that validates is ready
// to run.
func (s *Scenario) Validate() error {
	var errs ValidationErrors

	if s.Name == "" {
		errs.add("name", "scenario name is required")
	}
	if len(s.Users) == 0 {
		errs.add("users", "at least one user class is required")
	}

	userNames := make(map[string]bool)
	for i, u := range s.Users {
		path := fmt.Sprintf("users[%d]", i)
		if u.Name == "" {
			errs.add(path, "user class name is required")
		} else if userNames[u.Name] {
			errs.add(path, "duplicate user class name %q", u.Name)
		} else {
			userNames[u.Name] = true
		}

		if u.Weight < 1 {
			errs.add(path, "weight must be at least 1, got %d", u.Weight)
		}
		if _, err := ParseWait(u.Wait); err != nil {
			errs.add(path, "%v", err)
		}
		if len(u.Tasks) == 0 {
			errs.add(path, "user class %q has no tasks", u.Name)
		}

		taskNames := make(map[string]bool)
		for j, t := range u.Tasks {
			tpath := fmt.Sprintf("%s.tasks[%d]", path, j)
			validateTask(&errs, tpath, t, taskNames)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateTask(errs *ValidationErrors, path string, t *Task, seen map[string]bool) {
	if t.Name == "" {
		errs.add(path, "task name is required")
	} else if seen[t.Name] {
		errs.add(path, "duplicate task name %q", t.Name)
	} else {
		seen[t.Name] = true
	}

	if t.Weight < 1 {
		errs.add(path, "weight must be at least 1, got %d", t.Weight)
	}
	for _, tag := range t.Tags {
		if strings.TrimSpace(tag) == "" {
			errs.add(path, "tags must not be blank")
			break
		}
	}

	if !validMethods[t.Request.Method] {
		errs.add(path, "invalid HTTP method %q", t.Request.Method)
	}
	if t.Request.Path == "" {
		errs.add(path, "request path is required")
	} else if strings.Contains(t.Request.Path, "://") {
		errs.add(path, "request path must be relative to the host, got %q", t.Request.Path)
	}

	for k := range t.Checks {
		cpath := fmt.Sprintf("%s.checks[%d]", path, k)
		validateCheck(errs, cpath, &t.Checks[k])
	}
}

func validateCheck(errs *ValidationErrors, path string, c *Check) {
	switch c.Type {
	case CheckStatus:
		if c.Max < 100 || c.Max > 599 {
			errs.add(path, "status max must be a status code (100-599), got %d", c.Max)
		}
	case CheckJSONErrorKey:
		if c.Key == "" {
			errs.add(path, "json_error_key check needs a key")
		}
	case CheckJSONSchema:
		hasFile := c.File != ""
		hasInline := c.Schema != ""
		if hasFile == hasInline {
			errs.add(path, "json_schema check needs exactly one of file or schema")
			return
		}
		src := c.Schema
		if hasFile {
			data, err := os.ReadFile(c.File)
			if err != nil {
				errs.add(path, "cannot read schema file: %v", err)
				return
			}
			src = string(data)
		}
		compiled, err := jsonschema.Compile(src)
		if err != nil {
			errs.add(path, "invalid JSON schema: %v", err)
			return
		}
		c.compiled = compiled
	case "":
		errs.add(path, "check type is required")
	default:
		errs.add(path, "unknown check type %q (want status, json_error_key or json_schema)", c.Type)
	}
}
