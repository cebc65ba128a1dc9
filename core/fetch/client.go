package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the shared HTTP helper vendor adapters build on. It owns the
// transport configuration and translates HTTP-level failures into
// classified *fetch.Error values so adapters stay thin.
type Client struct {
	source     string
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient swaps in a custom HTTP client (tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates an HTTP helper for one vendor.
func NewClient(source, baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		source:  source,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the vendor tag this client fetches from.
func (c *Client) Source() string {
	return c.source
}

// URL builds the full request URL for a path and query.
func (c *Client) URL(path string, query url.Values) string {
	full := c.baseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

// Get performs a GET and returns the response body. Failures come back as
// *fetch.Error: transport problems as KindNetwork, non-2xx statuses via
// the status classifier.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	full := c.URL(path, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, NewError(c.source, KindNetwork, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewError(c.source, KindNetwork, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(c.source, KindNetwork, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Source:     c.source,
			Kind:       classifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status for %s", full),
		}
	}

	return body, nil
}
