package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/swarmload/swarm/internal/runner"
)

// WriteJSON dumps the full result, time series included, as indented
// JSON.
func WriteJSON(res *runner.Result, path string) error {
	if res == nil {
		return fmt.Errorf("report: result is empty")
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
