package http

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client wraps net/http with a base URL, default headers and per-phase
// timing capture. One Client is shared by all users of a run.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, options ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		headers:    make(map[string]string),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithPoolSize sizes the idle connection pool. Set it to at least the
// number of concurrent users so keep-alive connections are not churned.
func WithPoolSize(n int) ClientOption {
	return func(c *Client) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxIdleConns = n
		transport.MaxIdleConnsPerHost = n
		c.httpClient.Transport = transport
	}
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes the request and returns the fully read response together
// with a per-phase timing breakdown.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := req.Build(ctx, c.baseURL)
	if err != nil {
		return nil, err
	}
	for key, value := range c.headers {
		if httpReq.Header.Get(key) == "" {
			httpReq.Header.Set(key, value)
		}
	}

	timing := Timing{Start: time.Now()}

	// lastPhaseEnd tracks where the previous phase finished, so time to
	// first byte excludes DNS, connect and TLS on cold connections.
	lastPhaseEnd := timing.Start
	var dnsStart, connectStart, tlsStart time.Time

	trace := &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			now := time.Now()
			timing.DNSLookup = now.Sub(dnsStart)
			lastPhaseEnd = now
		},
		ConnectStart: func(network, addr string) {
			connectStart = time.Now()
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				now := time.Now()
				timing.Connect = now.Sub(connectStart)
				lastPhaseEnd = now
			}
		},
		TLSHandshakeStart: func() {
			tlsStart = time.Now()
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err == nil {
				now := time.Now()
				timing.TLSHandshake = now.Sub(tlsStart)
				lastPhaseEnd = now
			}
		},
		GotFirstResponseByte: func() {
			timing.FirstByte = time.Since(lastPhaseEnd)
		},
	}
	httpReq = httpReq.WithContext(httptrace.WithClientTrace(httpReq.Context(), trace))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}

	transferStart := time.Now()
	body, err := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	if err != nil {
		return nil, err
	}
	timing.ContentTransfer = time.Since(transferStart)
	timing.Total = time.Since(timing.Start)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    httpResp.Header,
		Body:       body,
		Timing:     timing,
	}, nil
}
