// Package ledger is the HTTP client for the external ledger API.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ledgerview/internal/core"
	"ledgerview/internal/log"
)

// healthPath is the upstream liveness route.
const healthPath = "/api/health"

// Client fetches transaction lists from the ledger API.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the client's logger, tagged with the ledger component.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

// New returns a client rooted at baseURL, which must be an absolute http(s) URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse ledger base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("ledger base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("ledger base url %q: missing host", baseURL)
	}

	c := &Client{
		base:   u,
		http:   http.DefaultClient,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured upstream root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Resolve turns a relative endpoint into an absolute upstream URL.
// Absolute and scheme-relative references are rejected so that a browser
// supplied endpoint can never point the service at another host.
func (c *Client) Resolve(endpoint string) (*url.URL, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, core.NewValidationError("endpoint", "missing endpoint")
	}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, core.NewValidationError("endpoint", "malformed endpoint")
	}
	if ref.IsAbs() || ref.Host != "" || strings.HasPrefix(endpoint, "//") {
		return nil, core.NewValidationError("endpoint", "endpoint must be a relative path")
	}
	return c.base.ResolveReference(ref), nil
}

// Fetch GETs endpoint and decodes a JSON array of transactions.
// Times are normalized and server order is preserved.
//
// A non-2xx status yields *core.HTTPError (which matches core.ErrNotFound for
// 404); network and decoding failures yield *core.TransportError.
func (c *Client) Fetch(ctx context.Context, endpoint string) ([]core.Transaction, error) {
	u, err := c.Resolve(endpoint)
	if err != nil {
		return nil, err
	}
	target := u.String()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &core.TransportError{Op: "build request", URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &core.TransportError{Op: "GET", URL: target, Err: err}
	}
	defer func() {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	c.logger.DebugContext(ctx, "Ledger response received",
		log.FieldEndpoint, target,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.HTTPError{Status: resp.StatusCode, URL: target}
	}

	var records []core.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &core.TransportError{Op: "decode", URL: target, Err: err}
	}
	return core.NormalizeAll(records), nil
}

// Ping checks the upstream health route.
func (c *Client) Ping(ctx context.Context) error {
	u, err := c.Resolve(healthPath)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &core.TransportError{Op: "GET", URL: u.String(), Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &core.HTTPError{Status: resp.StatusCode, URL: u.String()}
	}
	return nil
}
