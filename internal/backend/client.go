// Package backend is the HTTP client for the sales-suite admin API. All
// console features talk to the backend exclusively through this package.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

// Client talks to the sales-suite backend. The zero value is not usable;
// construct with New.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the given base URL. A trailing slash is stripped;
// an empty baseURL falls back to DefaultBaseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the normalized base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WebhookURL is the address the operator registers with the WhatsApp
// provider. Informational only; the console never calls it.
func (c *Client) WebhookURL() string {
	return c.baseURL + "/webhook/whatsapp"
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// decodeJSON decodes a 2xx response body into v and closes it. Non-2xx
// responses become an *APIError carrying the server's detail string when the
// body provides one.
func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Health fetches GET /health.
func (c *Client) Health(ctx context.Context) (HealthSnapshot, error) {
	var h HealthSnapshot
	resp, err := c.get(ctx, "/health")
	if err != nil {
		return h, err
	}
	if err := decodeJSON(resp, &h); err != nil {
		return HealthSnapshot{}, err
	}
	return h, nil
}

// Stats fetches GET /admin/stats.
func (c *Client) Stats(ctx context.Context) (StatsSnapshot, error) {
	var s StatsSnapshot
	resp, err := c.get(ctx, "/admin/stats")
	if err != nil {
		return s, err
	}
	if err := decodeJSON(resp, &s); err != nil {
		return StatsSnapshot{}, err
	}
	return s, nil
}

// Job fetches GET /admin/jobs/{id}.
func (c *Client) Job(ctx context.Context, id string) (JobStatus, error) {
	var j JobStatus
	resp, err := c.get(ctx, "/admin/jobs/"+url.PathEscape(id))
	if err != nil {
		return j, err
	}
	if err := decodeJSON(resp, &j); err != nil {
		return JobStatus{}, err
	}
	return j, nil
}

// Ingest posts a prepared ingestion request to POST /admin/ingest. Callers
// are expected to validate the request first; see the ingest package.
func (c *Client) Ingest(ctx context.Context, req any) (IngestResult, error) {
	var res IngestResult
	resp, err := c.post(ctx, "/admin/ingest", req)
	if err != nil {
		return res, err
	}
	if err := decodeJSON(resp, &res); err != nil {
		return IngestResult{}, err
	}
	return res, nil
}
