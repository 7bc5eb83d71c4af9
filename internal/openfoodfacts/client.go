// Package openfoodfacts provides a rate-limited client for the Open Food
// Facts API: text search, barcode lookup, and normalization of the
// heterogeneous source payloads into canonical Product records.
package openfoodfacts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://world.openfoodfacts.org"
	defaultUserAgent = "NutriTrack/1.0 (https://github.com/nutritrackapp/nutritrack-server)"
	defaultTimeout   = 30 * time.Second

	// OFF asks clients to stay around 100 requests per minute.
	defaultRequestsPerMinute = 100
	defaultBurst             = 10

	defaultPageSize = 25
	maxPageSize     = 100
)

// Config holds client configuration.
type Config struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client is a rate-limited Open Food Facts API client.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
	baseURL   string
	userAgent string
}

// New creates a new Open Food Facts client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}

	rps := float64(cfg.RequestsPerMinute) / 60.0

	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(rps), defaultBurst),
		logger:    logger,
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
	}
}

// Close releases resources. Currently a no-op but included for interface consistency.
func (c *Client) Close() {
	// No persistent resources to close
}

// doRequest executes a GET request against the API with rate limiting.
// Returns the response body for 2xx, ErrNotFound for 404, and a sentinel or
// status error otherwise.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("openfoodfacts request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrBadRequest
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
