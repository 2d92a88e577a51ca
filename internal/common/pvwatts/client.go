// Package pvwatts is the adapter for the PVWatts-style generation estimation service.
package pvwatts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "solar-roi-workers/internal/common/errors"
	commonhttp "solar-roi-workers/internal/common/http"
	"solar-roi-workers/internal/models"
)

const DefaultBaseURL = "https://developer.nrel.gov/api/pvwatts/v8.json"

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 1 << 20

// Client calls the PVWatts v8 endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *commonhttp.Client
}

// ClientConfig holds the endpoint, API key and request timeout.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient fills in the default base URL and a 30s timeout when unset.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http:    commonhttp.NewClient(timeout),
	}
}

// NewClientWithHTTP is used by tests to inject an httptest client.
func NewClientWithHTTP(baseURL, apiKey string, hc *commonhttp.Client) *Client {
	return &Client{baseURL: baseURL, apiKey: apiKey, http: hc}
}

// Lookup validates the site and fetches its annual generation. Out-of-range input
// fails with a ValidationError before any request is made. Every call is a fresh
// request: nothing is cached and nothing is retried.
func (c *Client) Lookup(ctx context.Context, site models.SiteParameters) (models.GenerationEstimate, error) {
	if err := site.Validate(); err != nil {
		return models.GenerationEstimate{}, err
	}

	resp, err := c.http.Get(ctx, c.baseURL, c.queryParams(site))
	if err != nil {
		return models.GenerationEstimate{}, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.GenerationEstimate{}, classifyTransportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.GenerationEstimate{}, statusError(resp.StatusCode, body)
	}

	decoded, err := Decode(body)
	if err != nil {
		return models.GenerationEstimate{}, err
	}
	return decoded.Estimate()
}

func (c *Client) queryParams(site models.SiteParameters) url.Values {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("system_capacity", formatFloat(site.SystemCapacity))
	params.Set("module_type", strconv.Itoa(site.ModuleType))
	params.Set("losses", formatFloat(site.Losses))
	params.Set("array_type", strconv.Itoa(site.ArrayType))
	params.Set("tilt", formatFloat(site.Tilt))
	params.Set("azimuth", formatFloat(site.Azimuth))
	params.Set("lat", formatFloat(site.Latitude))
	params.Set("lon", formatFloat(site.Longitude))
	return params
}

func statusError(status int, body []byte) error {
	collabErr := &apperrors.CollaboratorError{StatusCode: status}
	switch {
	case status == http.StatusTooManyRequests:
		collabErr.Reason = apperrors.ReasonRateLimited
	case status == http.StatusUnprocessableEntity:
		collabErr.Reason = apperrors.ReasonInvalidLocation
	default:
		collabErr.Reason = apperrors.ReasonHTTPStatus
	}
	// error bodies usually carry the upstream explanation
	if decoded, err := Decode(body); err == nil && len(decoded.Errors) > 0 {
		collabErr.Messages = decoded.Errors
	} else {
		collabErr.Err = fmt.Errorf("unexpected status %d", status)
	}
	return collabErr
}

func classifyTransportError(ctx context.Context, err error) error {
	reason := apperrors.ReasonNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		reason = apperrors.ReasonTimeout
	}
	return &apperrors.CollaboratorError{Reason: reason, Err: err}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
