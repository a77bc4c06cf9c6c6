// Package httpclient provides the HTTP client used to talk to the upstream catalog service.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize caps the size of a response body (100MB)
	MaxResponseSize = 100 * 1024 * 1024

	// UserAgent is sent with every request
	UserAgent = "storefront-catalog/1.0"
)

// Client fetches raw response bodies from HTTP endpoints.
type Client interface {
	// Get performs a GET request and returns the response body
	Get(ctx context.Context, url string, opts ...RequestOption) ([]byte, error)
}

// RequestOption customizes a single request.
type RequestOption func(*http.Request)

// WithHeader sets a request header. Empty values are skipped.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		if value != "" {
			req.Header.Set(key, value)
		}
	}
}

// DefaultClient implements Client on top of net/http.
type DefaultClient struct {
	client *http.Client
}

// NewDefaultClient creates a new HTTP client with the given timeout.
// A zero timeout selects DefaultTimeout.
func NewDefaultClient(timeout time.Duration) *DefaultClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &DefaultClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request and returns the response body
func (c *DefaultClient) Get(ctx context.Context, url string, opts ...RequestOption) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, NewHTTPError(resp.StatusCode, url, http.StatusText(resp.StatusCode))
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response size %d exceeds maximum allowed size of %.2f MB",
			resp.ContentLength, float64(MaxResponseSize)/(1024*1024))
	}

	// Read one extra byte to detect oversized bodies without a Content-Length.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response body exceeds maximum allowed size of %.2f MB",
			float64(MaxResponseSize)/(1024*1024))
	}

	return body, nil
}
