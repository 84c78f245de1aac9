package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a scenario document. The format follows the
// file extension: .yaml, .yml or .json. Schema file references are
// resolved relative to the document's directory, falling back to the
// path as written.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}

	s.resolveSchemaPaths(filepath.Dir(path))
	return s, nil
}

// Parse decodes a scenario document from raw bytes. ext selects the
// format (".yaml", ".yml" or ".json") and applies defaults for the
// fields the document omits.
func Parse(data []byte, ext string) (*Scenario, error) {
	var s Scenario
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q (use .yaml, .yml or .json)", ext)
	}

	s.applyDefaults()
	return &s, nil
}

// resolveSchemaPaths anchors relative schema file references at the
// scenario document's directory. A reference that does not exist there
// is left as written, so paths relative to the working directory (the
// repo or container root) keep working too.
func (s *Scenario) resolveSchemaPaths(dir string) {
	for _, u := range s.Users {
		for _, t := range u.Tasks {
			for i := range t.Checks {
				c := &t.Checks[i]
				if c.File == "" || filepath.IsAbs(c.File) {
					continue
				}
				joined := filepath.Join(dir, c.File)
				if _, err := os.Stat(joined); err == nil {
					c.File = joined
				}
			}
		}
	}
}
