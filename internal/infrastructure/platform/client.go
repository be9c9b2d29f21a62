// Package platform implements the HTTP client for the import platform's
// REST API.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sheetflow/listener/internal/application/listener"
	"github.com/sheetflow/listener/internal/domain/shared"
	"github.com/sheetflow/listener/internal/domain/sheet"
)

const (
	blueprintPath   = "/v1/workspaces/%s/blueprint"
	sheetsPath      = "/v1/workspaces/%s/sheets"
	recordsPath     = "/v1/sheets/%s/records"
	downloadPath    = "/v1/sheets/%s/download"
	secretPath      = "/v1/environments/%s/secrets/%s"
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 32 << 20 // 32 MiB
)

// Client talks to the import platform's REST API with bearer-token
// authentication
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption is a functional option for Client
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a platform API client
func NewClient(baseURL, apiToken string, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// dataEnvelope is the platform's standard response wrapper
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// secretPayload is the body of a secret lookup response
type secretPayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// recordsPayload is the body of record insert/update requests
type recordsPayload struct {
	Records []sheet.Record `json:"records"`
}

// ApplyBlueprint pushes a sheet schema to a workspace
func (c *Client) ApplyBlueprint(ctx context.Context, workspaceID string, blueprint sheet.Blueprint) error {
	path := fmt.Sprintf(blueprintPath, workspaceID)
	_, err := c.doJSON(ctx, http.MethodPut, path, blueprint)
	return err
}

// ListSheets returns the workspace's sheets
func (c *Client) ListSheets(ctx context.Context, workspaceID string) ([]sheet.Sheet, error) {
	path := fmt.Sprintf(sheetsPath, workspaceID)
	body, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var env dataEnvelope[[]sheet.Sheet]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("platform api: failed to decode sheet list: %w", err)
	}
	return env.Data, nil
}

// ListRecords returns all records of a sheet
func (c *Client) ListRecords(ctx context.Context, sheetID string) ([]sheet.Record, error) {
	path := fmt.Sprintf(recordsPath, sheetID)
	body, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var env dataEnvelope[[]sheet.Record]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("platform api: failed to decode records: %w", err)
	}
	return env.Data, nil
}

// InsertRecords appends new records to a sheet
func (c *Client) InsertRecords(ctx context.Context, sheetID string, records []sheet.Record) error {
	path := fmt.Sprintf(recordsPath, sheetID)
	_, err := c.doJSON(ctx, http.MethodPost, path, recordsPayload{Records: records})
	return err
}

// UpdateRecords writes modified records back to their sheet
func (c *Client) UpdateRecords(ctx context.Context, sheetID string, records []sheet.Record) error {
	path := fmt.Sprintf(recordsPath, sheetID)
	_, err := c.doJSON(ctx, http.MethodPatch, path, recordsPayload{Records: records})
	return err
}

// ExportCSV returns the sheet's live record set serialized as CSV
func (c *Client) ExportCSV(ctx context.Context, sheetID string) ([]byte, error) {
	path := fmt.Sprintf(downloadPath, sheetID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	return c.do(req)
}

// GetSecret resolves a named secret scoped to an environment. A missing
// secret wraps shared.ErrNotFound.
func (c *Client) GetSecret(ctx context.Context, environmentID, name string) (string, error) {
	path := fmt.Sprintf(secretPath, environmentID, name)
	body, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}

	var env dataEnvelope[secretPayload]
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("platform api: failed to decode secret: %w", err)
	}
	return env.Data.Value, nil
}

// doJSON sends a request with an optional JSON body and returns the raw
// response body
func (c *Client) doJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("platform api: failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("platform api: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("platform api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("platform api: failed to read response: %w", err)
	}

	c.logger.Debug("platform api call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("platform api: %s %s: %w", req.Method, req.URL.Path, shared.ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("platform api: %s %s: %w", req.Method, req.URL.Path, shared.ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("platform api: %s %s: unexpected status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, truncate(body, 256))
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Ensure Client implements the application-layer port
var _ listener.PlatformAPI = (*Client)(nil)
