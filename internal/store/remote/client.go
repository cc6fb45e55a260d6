// Package remote talks to the todo service over its JSON REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/model"
)

// DefaultResourcePath is where the service mounts the todo collection.
const DefaultResourcePath = "/api/todos"

// error bodies are truncated to this many bytes in TransportError.
const maxErrorBody = 512

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the service origin, e.g. "http://localhost:8080".
	BaseURL string
	// ResourcePath defaults to DefaultResourcePath.
	ResourcePath string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger receives one debug line per request. If nil, log.Default() is used.
	Logger *log.Logger
}

// Client maps todo operations onto HTTP calls. It never retries.
type Client struct {
	root       string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient validates the configuration and returns a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("remote: BaseURL is required")
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: BaseURL %q must be http or https", config.BaseURL)
	}

	resource := config.ResourcePath
	if resource == "" {
		resource = DefaultResourcePath
	}
	resource = "/" + strings.Trim(resource, "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}

	// Request URLs are built by concatenation so the search query keeps
	// the exact encoding produced by encodeComponent.
	return &Client{
		root:       strings.TrimRight(config.BaseURL, "/") + resource,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Root returns the collection URL every request is built from.
func (c *Client) Root() string { return c.root }

// ListAll fetches the whole collection.
func (c *Client) ListAll(ctx context.Context) ([]model.Todo, error) {
	var out []model.Todo
	if err := c.do(ctx, http.MethodGet, "", nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Get fetches one todo. A missing id yields an error matching ErrNotFound.
func (c *Client) Get(ctx context.Context, id int64) (model.Todo, error) {
	var out model.Todo
	err := c.do(ctx, http.MethodGet, idPath(id), nil, &out)
	return out, err
}

// ListByStatus lets the service filter by completion.
func (c *Client) ListByStatus(ctx context.Context, completed bool) ([]model.Todo, error) {
	var out []model.Todo
	if err := c.do(ctx, http.MethodGet, "/status?completed="+strconv.FormatBool(completed), nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Search asks the service for todos whose title contains title.
func (c *Client) Search(ctx context.Context, title string) ([]model.Todo, error) {
	var out []model.Todo
	if err := c.do(ctx, http.MethodGet, "/search?title="+encodeComponent(title), nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Create posts a new todo; the returned value carries the server id
// and timestamps.
func (c *Client) Create(ctx context.Context, draft model.Todo) (model.Todo, error) {
	var out model.Todo
	err := c.do(ctx, http.MethodPost, "", draft.Draft(), &out)
	return out, err
}

// Update replaces the todo stored under id.
func (c *Client) Update(ctx context.Context, id int64, todo model.Todo) (model.Todo, error) {
	todo.ID = id
	var out model.Todo
	err := c.do(ctx, http.MethodPut, idPath(id), todo, &out)
	return out, err
}

// Delete removes the todo stored under id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath(id), nil, nil)
}

// Toggle flips completion server-side and returns the new state.
func (c *Client) Toggle(ctx context.Context, id int64) (model.Todo, error) {
	var out model.Todo
	err := c.do(ctx, http.MethodPatch, idPath(id)+"/toggle", nil, &out)
	return out, err
}

// -------------- transport ----------------

// do sends one request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	requestURL := c.root + path
	logPath := path
	if logPath == "" {
		logPath = "/"
	}
	fail := func(status int, respBody string, err error) error {
		return &TransportError{Method: method, Path: requestURL, StatusCode: status, Body: respBody, Err: err}
	}

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fail(0, "", fmt.Errorf("encode request body: %w", err))
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fail(0, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", logPath, "err", err)
		return fail(0, "", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("read response body: %w", err))
	}
	c.logger.Debug("request", "method", method, "path", logPath,
		"status", resp.StatusCode, "bytes", len(respBody), "took", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(respBody))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody] + "..."
		}
		return fail(resp.StatusCode, snippet, nil)
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return fail(resp.StatusCode, "", fmt.Errorf("%w: empty body", ErrMalformedResponse))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	return nil
}

func idPath(id int64) string {
	return "/" + strconv.FormatInt(id, 10)
}

func nonNil(todos []model.Todo) []model.Todo {
	if todos == nil {
		return []model.Todo{}
	}
	return todos
}

// encodeComponent escapes s the way the service's reference client
// does (encodeURIComponent): spaces become %20, and !'()* stay literal.
func encodeComponent(s string) string {
	return componentReplacer.Replace(url.QueryEscape(s))
}

var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)
