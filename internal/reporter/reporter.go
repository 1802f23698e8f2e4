// Package reporter uploads match reports to the ladder server.
package reporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/eslreporter/warnlog/pkg/warnlog/report"
)

const (
	// DefaultEndpoint is the ladder's report endpoint.
	DefaultEndpoint = "http://dawnofwar.info/esl/esl-report.php"

	// DefaultTimeout bounds one upload, including the replay attachment.
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 64 * 1024
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("report rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("report rejected with status %d: %s", e.StatusCode, e.Body)
}

// Response is the server's answer to an accepted upload.
type Response struct {
	StatusCode int
	Body       string
}

// Accepted reports whether the server's message signals success. The
// server answers 200 with an error text for reports it refuses.
func (r Response) Accepted() bool {
	return !strings.Contains(strings.ToLower(r.Body), "error")
}

// Client posts reports to one endpoint. Failed uploads are not retried.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-upload timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a logger for upload diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for endpoint. An empty endpoint uses DefaultEndpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New("invalid endpoint: must be an absolute http(s) URL")
	}

	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Endpoint returns the URL reports are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send posts r as JSON. A non-2xx answer returns a *StatusError.
func (c *Client) Send(ctx context.Context, r report.Report) (Response, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, fmt.Errorf("reading response: %w", err)
	}
	text := strings.TrimSpace(string(body))

	c.logger.Debug("report sent",
		"id", r.ID, "status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &StatusError{StatusCode: resp.StatusCode, Body: text}
	}
	return Response{StatusCode: resp.StatusCode, Body: text}, nil
}
