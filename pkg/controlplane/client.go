// Package controlplane is the HTTP client for the GraphDeck control plane API.
// It covers source-control integrations, deployments and their revisions, and
// build-log streaming. All calls attach the caller's API key and workspace
// scoping headers; transient transport failures are retried a bounded number
// of times before surfacing.
package controlplane

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultBaseURL is the production control plane endpoint. Override via
// NewClient for staging or test servers.
const DefaultBaseURL = "https://api.graphdeck.dev"

// Client is the control plane API client
type Client struct {
	baseURL        string
	apiKey         string
	workspaceID    string
	organizationID string
	httpClient     *retryablehttp.Client
	logger         hclog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithWorkspaceID scopes every request to a workspace via the
// x-workspace-id header
func WithWorkspaceID(id string) Option {
	return func(c *Client) { c.workspaceID = id }
}

// WithOrganizationID scopes every request to an organization via the
// x-organization-id header
func WithOrganizationID(id string) Option {
	return func(c *Client) { c.organizationID = id }
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger hclog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a control plane client. The underlying transport retries
// transient failures (connection errors, 429, 5xx) up to three times with
// backoff; a 30 second per-call timeout applies to each attempt.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil // Disable default logging
	retryClient.HTTPClient.Timeout = 30 * time.Second

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: retryClient,
		logger:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = hclog.NewNullLogger()
	}
	return c, nil
}

// BaseURL returns the normalized base URL of the client
func (c *Client) BaseURL() string {
	return c.baseURL
}

// redact removes the API key from strings before they reach logs
func (c *Client) redact(s string) string {
	if c.apiKey != "" {
		return strings.ReplaceAll(s, c.apiKey, "[REDACTED]")
	}
	return s
}

// doJSON performs one API call. reqBody and respBody may be nil. A non-2xx
// response is returned as *APIError with the request id attached.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + path

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("X-Request-Id", requestID)
	if c.workspaceID != "" {
		req.Header.Set("x-workspace-id", c.workspaceID)
	}
	if c.organizationID != "" {
		req.Header.Set("x-organization-id", c.organizationID)
	}

	c.logger.Debug("control plane request", "method", method, "url", c.redact(fullURL), "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody apiErrorBody
		_ = json.Unmarshal(body, &errBody)
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    errBody.message(body),
			RequestID:  requestID,
		}
		c.logger.Debug("control plane error", "status", resp.StatusCode, "request_id", requestID)
		return apiErr
	}

	if respBody != nil && len(body) > 0 {
		if err := json.Unmarshal(body, respBody); err != nil {
			return fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}
	return nil
}
