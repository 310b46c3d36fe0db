// Package client talks to the admin HTTP API of an inkpress server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"inkpress/internal/admin/config"
	"inkpress/internal/types"
	"inkpress/internal/version"

	"go.uber.org/zap"
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// Is matches types.ErrNotFound for 404 responses
func (e *StatusError) Is(target error) bool {
	return target == types.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client implements ledger.Client over HTTP
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// New creates a client for the server in cfg
func New(cfg *config.ServerConfig, logger *zap.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL: cfg.Address + "/api/admin",
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger: logger.Named("client"),
	}
}

// Apply saves payload through the endpoint of its category
func (c *Client) Apply(ctx context.Context, payload types.Payload) error {
	switch p := payload.(type) {
	case *types.HomepagePayload:
		return c.do(ctx, http.MethodPost, "/homepage/config", p, nil)
	case *types.SettingsPayload:
		return c.do(ctx, http.MethodPost, "/settings", p, nil)
	case *types.ContentPayload:
		body := map[string]string{"content": p.Content}
		return c.do(ctx, http.MethodPut, "/posts/"+url.PathEscape(p.Slug)+"/content", body, nil)
	default:
		return fmt.Errorf("%w: %T", types.ErrInvalidCategory, payload)
	}
}

// DeployBatch submits changes to the batch deploy endpoint
func (c *Client) DeployBatch(ctx context.Context, changes []types.PendingChange) (*types.DeployResponse, error) {
	var resp types.DeployResponse
	if err := c.do(ctx, http.MethodPost, "/deploy/batch", types.DeployRequest{Changes: changes}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HomepageConfig fetches the current homepage document
func (c *Client) HomepageConfig(ctx context.Context) (types.HomepageConfig, error) {
	var out types.HomepagePayload
	err := c.do(ctx, http.MethodGet, "/homepage/config", nil, &out)
	return out.Config, err
}

// Settings fetches the current site settings
func (c *Client) Settings(ctx context.Context) (types.SiteSettings, error) {
	var out types.SettingsPayload
	err := c.do(ctx, http.MethodGet, "/settings", nil, &out)
	return out.Settings, err
}

// PostContent fetches the body of the post matching slug
func (c *Client) PostContent(ctx context.Context, slug string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(slug)+"/content", nil, &out)
	return out.Content, err
}

// Snapshot captures the current server state for the target of payload,
// for use as the original of a pending change
func (c *Client) Snapshot(ctx context.Context, payload types.Payload) (types.Payload, error) {
	switch p := payload.(type) {
	case *types.HomepagePayload:
		cfg, err := c.HomepageConfig(ctx)
		if err != nil {
			return nil, err
		}
		return &types.HomepagePayload{Config: cfg}, nil
	case *types.SettingsPayload:
		s, err := c.Settings(ctx)
		if err != nil {
			return nil, err
		}
		return &types.SettingsPayload{Settings: s}, nil
	case *types.ContentPayload:
		body, err := c.PostContent(ctx, p.Slug)
		if err != nil {
			return nil, err
		}
		return &types.ContentPayload{Slug: p.Slug, Content: body}, nil
	default:
		return nil, fmt.Errorf("%w: %T", types.ErrInvalidCategory, payload)
	}
}

// History lists past deployments, newest first
func (c *Client) History(ctx context.Context, limit int) ([]types.AuditRecord, error) {
	var out struct {
		Deployments []types.AuditRecord `json:"deployments"`
	}
	path := "/deploy/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Deployments, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent("admin"))

	c.logger.Debug("Sending request",
		zap.String("method", method),
		zap.String("path", path))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func statusError(code int, body []byte) error {
	var msg struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &msg); err != nil || msg.Message == "" {
		msg.Message = http.StatusText(code)
	}

	return &StatusError{StatusCode: code, Message: msg.Message}
}
