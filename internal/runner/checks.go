package runner

import (
	"fmt"

	"github.com/tidwall/gjson"

	swarmhttp "github.com/swarmload/swarm/internal/http"
	"github.com/swarmload/swarm/internal/scenario"
	"github.com/swarmload/swarm/pkg/jsonpath"
)

// RunChecks evaluates the task checks in order against a response,
// returning the first failure message. Later checks are not run once
// one fails.
func RunChecks(checks []scenario.Check, resp *swarmhttp.Response) (string, bool) {
	for i := range checks {
		if msg := runCheck(&checks[i], resp); msg != "" {
			return msg, false
		}
	}
	return "", true
}

func runCheck(c *scenario.Check, resp *swarmhttp.Response) string {
	switch c.Type {
	case scenario.CheckStatus:
		if resp.StatusCode > c.Max {
			return fmt.Sprintf("status %d exceeds %d", resp.StatusCode, c.Max)
		}

	case scenario.CheckJSONErrorKey:
		result, err := jsonpath.Lookup(resp.Body, c.Key)
		if err != nil {
			return fmt.Sprintf("error key %q: %v", c.Key, err)
		}
		// Missing and explicit null both pass, anything else is the
		// service reporting a failure in-band.
		if result.Exists() && result.Type != gjson.Null {
			return fmt.Sprintf("error key %q holds %s", c.Key, result.Raw)
		}

	case scenario.CheckJSONSchema:
		schema := c.CompiledSchema()
		if schema == nil {
			return ""
		}
		// The validator's message already names the violation.
		if err := schema.Validate(resp.Body); err != nil {
			return err.Error()
		}
	}
	return ""
}
