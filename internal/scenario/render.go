package scenario

import (
	"strings"

	"github.com/google/uuid"
)

// uuidToken is replaced with a fresh UUIDv4 on every render, which is
// how request templates express per-request idempotency keys.
const uuidToken = "{{uuid}}"

// RenderRequest materializes a request template: {{name}} placeholders
// are replaced from vars and each {{uuid}} occurrence becomes a fresh
// UUIDv4. The template itself is never mutated.
func RenderRequest(req Request, vars map[string]string) Request {
	out := Request{
		Method: req.Method,
		Path:   resolve(req.Path, vars),
		Body:   resolve(req.Body, vars),
	}
	if len(req.Headers) > 0 {
		out.Headers = make(map[string]string, len(req.Headers))
		for k, v := range req.Headers {
			out.Headers[k] = resolve(v, vars)
		}
	}
	return out
}

func resolve(s string, vars map[string]string) string {
	if s == "" || !strings.Contains(s, "{{") {
		return s
	}
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	for strings.Contains(s, uuidToken) {
		s = strings.Replace(s, uuidToken, uuid.NewString(), 1)
	}
	return s
}
