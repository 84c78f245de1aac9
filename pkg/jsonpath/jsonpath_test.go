package jsonpath

import (
	"testing"

	"github.com/tidwall/gjson"
)

const doc = `{
	"error": null,
	"requesting_service_name": "swarm",
	"data": {
		"items": [
			{"id": 1, "name": "first"},
			{"id": 2, "name": "second"}
		],
		"error": "boom"
	}
}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"plain key", "requesting_service_name", "swarm", false},
		{"dotted path", "data.error", "boom", false},
		{"jsonpath dollar", "$.data.error", "boom", false},
		{"array index", "$.data.items[1].name", "second", false},
		{"bracket quotes", "$['data'].items[0].id", "1", false},
		{"null value", "error", "null", false},
		{"missing path", "$.nope", "", true},
		{"empty path", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(doc, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Extract(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestLookupDistinguishesNullFromMissing(t *testing.T) {
	null, err := Lookup([]byte(doc), "error")
	if err != nil {
		t.Fatalf("Lookup(error) error = %v", err)
	}
	if !null.Exists() || null.Type != gjson.Null {
		t.Errorf("error key should exist as explicit null, got %v", null)
	}

	missing, err := Lookup([]byte(doc), "no_such_key")
	if err != nil {
		t.Fatalf("Lookup(no_such_key) error = %v", err)
	}
	if missing.Exists() {
		t.Errorf("missing key should not exist, got %v", missing)
	}
}

func TestLookupRejectsBadInput(t *testing.T) {
	if _, err := Lookup(nil, "a"); err == nil {
		t.Error("empty document should fail")
	}
	if _, err := Lookup([]byte("{broken"), "a"); err == nil {
		t.Error("malformed document should fail")
	}
	if _, err := Lookup([]byte(doc), ""); err == nil {
		t.Error("empty path should fail")
	}
}
