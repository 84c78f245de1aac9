package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// Timing breaks a request down into connection phases. Phases that did
// not occur, for example DNS on a reused connection, stay zero.
type Timing struct {
	Start           time.Time
	DNSLookup       time.Duration
	Connect         time.Duration
	TLSHandshake    time.Duration
	FirstByte       time.Duration
	ContentTransfer time.Duration
	Total           time.Duration
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
	Timing     Timing
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// Header returns the value of the named response header.
func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

// Size returns the body length in bytes.
func (r *Response) Size() int64 {
	return int64(len(r.Body))
}

// IsError reports whether the status code indicates a failure. Anything
// below 400 counts as success, redirects included.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}
