package scenario

import (
	"strings"
	"testing"
)

func validScenario() *Scenario {
	s := &Scenario{
		Name: "valid",
		Users: []*UserClass{
			{
				Name: "U",
				Wait: "constant_throughput(1)",
				Tasks: []*Task{
					{
						Name:    "call",
						Tags:    []string{"fast"},
						Request: Request{Method: "post", Path: "/api/v1/x"},
						Checks: []Check{
							{Type: CheckStatus},
							{Type: CheckJSONErrorKey},
							{Type: CheckJSONSchema, Schema: `{"type": "object"}`},
						},
					},
				},
			},
		},
	}
	s.applyDefaults()
	return s
}

func TestValidateAccepts(t *testing.T) {
	s := validScenario()
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if s.Users[0].Tasks[0].Checks[2].CompiledSchema() == nil {
		t.Error("inline schema should be compiled")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Scenario)
		wantText string
	}{
		{"missing name", func(s *Scenario) { s.Name = "" }, "scenario name"},
		{"no users", func(s *Scenario) { s.Users = nil }, "at least one user class"},
		{"unnamed user", func(s *Scenario) { s.Users[0].Name = "" }, "user class name"},
		{"zero weight user", func(s *Scenario) { s.Users[0].Weight = -1 }, "weight"},
		{"bad wait", func(s *Scenario) { s.Users[0].Wait = "sometimes(1)" }, "wait"},
		{"no tasks", func(s *Scenario) { s.Users[0].Tasks = nil }, "no tasks"},
		{"unnamed task", func(s *Scenario) { s.Users[0].Tasks[0].Name = "" }, "task name"},
		{"bad method", func(s *Scenario) { s.Users[0].Tasks[0].Request.Method = "FETCH" }, "method"},
		{"empty path", func(s *Scenario) { s.Users[0].Tasks[0].Request.Path = "" }, "path"},
		{"absolute path", func(s *Scenario) { s.Users[0].Tasks[0].Request.Path = "http://other.host/x" }, "relative"},
		{"blank tag", func(s *Scenario) { s.Users[0].Tasks[0].Tags = []string{" "} }, "blank"},
		{"bad status max", func(s *Scenario) { s.Users[0].Tasks[0].Checks[0].Max = 42 }, "status"},
		{"unknown check", func(s *Scenario) { s.Users[0].Tasks[0].Checks[0].Type = "regex" }, "unknown check type"},
		{"schema both sources", func(s *Scenario) { s.Users[0].Tasks[0].Checks[2].File = "x.json" }, "exactly one"},
		{"schema no sources", func(s *Scenario) { s.Users[0].Tasks[0].Checks[2].Schema = "" }, "exactly one"},
		{"schema missing file", func(s *Scenario) {
			s.Users[0].Tasks[0].Checks[2].Schema = ""
			s.Users[0].Tasks[0].Checks[2].File = "/nonexistent/schema.json"
		}, "cannot read"},
		{"schema invalid", func(s *Scenario) { s.Users[0].Tasks[0].Checks[2].Schema = `{"type": 12}` }, "invalid JSON schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScenario()
			tt.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error should contain %q, got: %v", tt.wantText, err)
			}
		})
	}
}

func TestValidateDuplicateNames(t *testing.T) {
	s := validScenario()
	second := *s.Users[0]
	s.Users = append(s.Users, &second)

	err := s.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate user class") {
		t.Errorf("want duplicate user class error, got: %v", err)
	}

	s = validScenario()
	dupTask := *s.Users[0].Tasks[0]
	s.Users[0].Tasks = append(s.Users[0].Tasks, &dupTask)
	err = s.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate task") {
		t.Errorf("want duplicate task error, got: %v", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	s := validScenario()
	s.Name = ""
	s.Users[0].Tasks[0].Request.Path = ""
	s.Users[0].Wait = "broken("

	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("error type = %T, want ValidationErrors", err)
	}
	if len(verrs) != 3 {
		t.Errorf("got %d problems, want 3: %v", len(verrs), err)
	}
}
