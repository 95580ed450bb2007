// Package client is a Go client for the InfraTrack read-only JSON API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"infratrack.io/infratrack/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type HostList struct {
	Count int           `json:"count"`
	Hosts []models.Host `json:"hosts"`
}

type TaskList struct {
	Count int           `json:"count"`
	Tasks []models.Task `json:"tasks"`
}

type ChangeList struct {
	Count   int             `json:"count"`
	Changes []models.Change `json:"changes"`
}

// Statistics are the record totals reported by /api/v1/stats.
type Statistics struct {
	Hosts   int `json:"hosts"`
	Tasks   int `json:"tasks"`
	Changes int `json:"changes"`
}

// Health is the body of /health.
type Health struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Error is a non-2xx API response.
type Error struct {
	StatusCode int    `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("infratrack: %d %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("infratrack: %d %s", e.StatusCode, e.Message)
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	// An unhealthy server answers 503 with a Health body.
	err := c.get(ctx, "/health", &h, http.StatusServiceUnavailable)
	return &h, err
}

func (c *Client) ListHosts(ctx context.Context) (*HostList, error) {
	var out HostList
	if err := c.get(ctx, "/api/v1/hosts", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetHost(ctx context.Context, id int64) (*models.Host, error) {
	var out models.Host
	if err := c.get(ctx, "/api/v1/hosts/"+strconv.FormatInt(id, 10), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTasks(ctx context.Context) (*TaskList, error) {
	var out TaskList
	if err := c.get(ctx, "/api/v1/tasks", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListChanges(ctx context.Context) (*ChangeList, error) {
	var out ChangeList
	if err := c.get(ctx, "/api/v1/changes", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Statistics(ctx context.Context) (*Statistics, error) {
	var out Statistics
	if err := c.get(ctx, "/api/v1/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get decodes a JSON response into out. Statuses listed in accept are
// decoded as well and reported as *Error after decoding.
func (c *Client) get(ctx context.Context, path string, out any, accept ...int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}

	for _, code := range accept {
		if resp.StatusCode == code {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			return &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
	}

	apiErr := &Error{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}
