package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request describes an HTTP request relative to a client base URL.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    string
}

// NewRequest creates a request for the given method and path.
func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Headers: make(map[string]string),
	}
}

// WithHeader adds a header to the request.
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithBody sets the request body.
func (r *Request) WithBody(body string) *Request {
	r.Body = body
	return r
}

// Build constructs an http.Request by joining the path onto baseURL.
func (r *Request) Build(ctx context.Context, baseURL string) (*http.Request, error) {
	reqURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	if reqURL.Path == "" {
		reqURL.Path = r.Path
	} else {
		reqURL.Path = strings.TrimRight(reqURL.Path, "/") + "/" + strings.TrimLeft(r.Path, "/")
	}

	var body io.Reader
	if r.Body != "" {
		body = strings.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, reqURL.String(), body)
	if err != nil {
		return nil, err
	}
	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}
	return req, nil
}
