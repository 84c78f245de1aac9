package jsonschema

import (
	"strings"
	"testing"
)

const serviceSchema = `{
	"type": "object",
	"properties": {
		"requesting_service_name": {
			"type": "string",
			"minLength": 1,
			"maxLength": 45
		},
		"error": {
			"type": ["null", "string"]
		}
	},
	"required": ["requesting_service_name"]
}`

func TestCompile(t *testing.T) {
	if _, err := Compile(serviceSchema); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if _, err := Compile(`{"type": "not-a-type"}`); err == nil {
		t.Error("Compile() should reject an invalid schema")
	}
	if _, err := Compile(`{not json`); err == nil {
		t.Error("Compile() should reject malformed JSON")
	}
}

func TestValidate(t *testing.T) {
	schema, err := Compile(serviceSchema)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"conforming", `{"requesting_service_name": "swarm", "error": null}`, false},
		{"missing required", `{"error": null}`, true},
		{"empty name", `{"requesting_service_name": ""}`, true},
		{"wrong type", `{"requesting_service_name": 42}`, true},
		{"name too long", `{"requesting_service_name": "` + strings.Repeat("x", 46) + `"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate([]byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRejectsNonJSON(t *testing.T) {
	schema, err := Compile(serviceSchema)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if err := schema.Validate([]byte("not json at all")); err == nil {
		t.Error("Validate() should reject a non-JSON document")
	}
}

func TestViolationsListsEveryProblem(t *testing.T) {
	schema, err := Compile(serviceSchema)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	violations, err := schema.Violations([]byte(`{"requesting_service_name": "", "error": 7}`))
	if err != nil {
		t.Fatalf("Violations() error = %v", err)
	}
	if len(violations) < 2 {
		t.Errorf("got %d violations, want at least 2: %v", len(violations), violations)
	}
	for _, v := range violations {
		if !strings.Contains(v, ":") {
			t.Errorf("violation %q should carry an instance location", v)
		}
	}
}
