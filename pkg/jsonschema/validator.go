// Package jsonschema compiles JSON schemas and validates documents
// against them. Schemas are compiled once and reused, which keeps
// per-request validation cheap.
package jsonschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	schemav5 "github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON schema ready for repeated validation.
type Schema struct {
	compiled *schemav5.Schema
}

// Compile parses and compiles a schema document.
func Compile(schemaJSON string) (*Schema, error) {
	compiler := schemav5.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// Validate checks a JSON document against the schema. The error
// message lists the violations found.
func (s *Schema) Validate(data []byte) error {
	violations, err := s.Violations(data)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return fmt.Errorf("schema violation: %s", strings.Join(violations, "; "))
	}
	return nil
}

// Violations returns every leaf-level schema violation in the
// document, or an empty slice when it conforms. The error return is
// reserved for documents that are not JSON at all.
func (s *Schema) Violations(data []byte) ([]string, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("document is not valid JSON: %w", err)
	}

	err := s.compiled.Validate(doc)
	if err == nil {
		return nil, nil
	}

	var ve *schemav5.ValidationError
	if errors.As(err, &ve) {
		return collectLeaves(ve, nil), nil
	}
	return []string{err.Error()}, nil
}

// collectLeaves walks the validation error tree and keeps the leaf
// causes, which carry the actionable messages.
func collectLeaves(ve *schemav5.ValidationError, out []string) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return append(out, fmt.Sprintf("%s: %s", loc, ve.Message))
	}
	for _, cause := range ve.Causes {
		out = collectLeaves(cause, out)
	}
	return out
}
