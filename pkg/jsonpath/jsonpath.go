// Package jsonpath resolves JSONPath-style expressions against JSON
// documents, with gjson underneath. Plain dotted paths ("data.error")
// and JSONPath forms ("$.data.error", "$['data'].error", "$[0]") are
// both accepted.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Lookup resolves path against the document and returns the raw gjson
// result, which distinguishes missing keys from explicit nulls.
func Lookup(doc []byte, path string) (gjson.Result, error) {
	if len(doc) == 0 {
		return gjson.Result{}, fmt.Errorf("empty JSON document")
	}
	if path == "" {
		return gjson.Result{}, fmt.Errorf("empty path expression")
	}
	if !gjson.ValidBytes(doc) {
		return gjson.Result{}, fmt.Errorf("document is not valid JSON")
	}
	return gjson.GetBytes(doc, toGjsonPath(path)), nil
}

// Extract returns the value at path as a string, failing when the path
// does not exist. Explicit nulls come back as "null".
func Extract(doc string, path string) (string, error) {
	result, err := Lookup([]byte(doc), path)
	if err != nil {
		return "", err
	}
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

var bracketQuotes = strings.NewReplacer("['", ".", "']", "", `["`, ".", `"]`, "")

// toGjsonPath rewrites a JSONPath expression into gjson's dotted form:
// $.users[0].name becomes users.0.name.
func toGjsonPath(path string) string {
	p := strings.TrimPrefix(path, "$")
	p = bracketQuotes.Replace(p)
	p = strings.ReplaceAll(p, "[", ".")
	p = strings.ReplaceAll(p, "]", "")
	p = strings.TrimPrefix(p, ".")
	if p == "" {
		return "@this"
	}
	return p
}
