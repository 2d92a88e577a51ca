package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultUserAgent = "solar-roi-workers/1.0"

type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}
}

// NewClientWith wraps an existing *http.Client, e.g. one from httptest.
func NewClientWith(hc *http.Client) *Client {
	return &Client{httpClient: hc, userAgent: defaultUserAgent}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}

// Get issues a GET to baseURL with params merged into its query string.
func (c *Client) Get(ctx context.Context, baseURL string, params url.Values) (*http.Response, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.Do(req)
}
