// Package egress queries the host's external identity (public addresses,
// ISP, country) from the ipinfo.io API. The lookup runs once per invocation,
// for the active default-route interface only.
package egress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"netcheck/internal/config"
	sharedhttp "netcheck/internal/http"
	"netcheck/internal/netinfo"
)

// Client performs external IP lookups. IPv4 is the primary record and gets
// retries with exponential backoff; IPv6 is optional data and fails fast.
type Client struct {
	cfg     config.EgressConfig
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
	sleep   func(time.Duration)
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient overrides the HTTP client (tests substitute a fake server's
// client or shorter timeouts).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.client = client }
}

// WithSleep overrides the backoff sleep (tests make it a no-op).
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Client) { c.sleep = sleep }
}

// NewClient creates an egress client.
func NewClient(cfg config.EgressConfig, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		timeout: timeout,
		client:  sharedhttp.GetClientWithTimeout(timeout),
		logger:  slog.Default(),
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the subset of the ipinfo.io document the tool consumes.
type apiResponse struct {
	IP      string `json:"ip"`
	Org     string `json:"org"`
	Country string `json:"country"`
}

// Lookup queries the external identity. A failed IPv4 lookup yields the
// all-"QUERY FAILED" record; a failed IPv6 lookup degrades only that field.
func (c *Client) Lookup(ctx context.Context) netinfo.Egress {
	body, err := c.getWithRetry(ctx, c.cfg.IPv4URL)
	if err != nil {
		c.logger.Error("ipv4 egress query failed",
			"attempts", c.cfg.RetryAttempts, "error", err)
		return netinfo.FailedEgress()
	}

	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error("invalid json from egress api", "error", err)
		return netinfo.FailedEgress()
	}
	if data.IP == "" || data.Org == "" || data.Country == "" {
		c.logger.Error("egress api response missing required fields")
		return netinfo.FailedEgress()
	}

	result := netinfo.Egress{
		ExternalIP:   data.IP,
		ExternalIPv6: netinfo.MarkerNotAvailable.String(),
		ISP:          data.Org,
		Country:      data.Country,
	}

	// IPv6 is optional: one attempt, no retry.
	if body, err := c.get(ctx, c.cfg.IPv6URL); err == nil {
		var v6 apiResponse
		if json.Unmarshal(body, &v6) == nil && v6.IP != "" {
			result.ExternalIPv6 = v6.IP
		}
	}

	return result
}

func (c *Client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := range c.cfg.RetryAttempts {
		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt < c.cfg.RetryAttempts-1 {
			backoff := time.Duration(c.cfg.RetryBackoff*float64(uint(1)<<uint(attempt))) * time.Second
			c.logger.Debug("egress request failed, retrying",
				"attempt", attempt+1, "backoff", backoff, "error", err)
			c.sleep(backoff)
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
