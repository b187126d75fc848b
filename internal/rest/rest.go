// Package rest implements the HTTP transport for the ChromaDB API and the
// version-fallback dispatcher layered on top of it. The transport knows both
// API generations (v1 with tenant/database query parameters, v2 with
// tenant/database path segments) but never decides between them; that is the
// dispatcher's job.
package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chromalens/chromalens-go/internal/apierr"
)

// API generations.
const (
	V1 = "v1"
	V2 = "v2"
)

// DefaultTimeout bounds a request when the caller sets none.
const DefaultTimeout = 60 * time.Second

// Request is one fully resolved endpoint call: the path is relative to
// /api/{version}/ and already contains tenant/database segments when the
// generation requires them.
type Request struct {
	Method  string
	Version string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
}

// Config holds the transport settings, immutable after construction.
type Config struct {
	Host               string
	Port               int
	TLS                bool
	InsecureSkipVerify bool
	APIKey             string
	Headers            map[string]string
	Timeout            time.Duration
	HTTPClient         *http.Client
	Logger             *slog.Logger
}

// Client performs HTTP calls against one ChromaDB server.
type Client struct {
	baseURL string
	headers map[string]string
	hc      *http.Client
	logger  *slog.Logger
}

// NewClient builds a transport from the given config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, apierr.Config("host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, apierr.Config(fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port))
	}

	scheme := "http"
	if cfg.TLS {
		scheme = "https"
	}

	headers := map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
		if cfg.InsecureSkipVerify {
			hc.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // explicit opt-in
			}
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL: fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port),
		headers: headers,
		hc:      hc,
		logger:  logger,
	}, nil
}

// URL resolves a request path to an absolute endpoint URL.
func (c *Client) URL(version, path string) string {
	return c.baseURL + "/api/" + version + "/" + strings.TrimPrefix(path, "/")
}

// Do executes one request and returns the response body. Non-2xx statuses
// and network failures come back as typed errors; the transport never
// retries anything.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	endpoint := c.URL(req.Version, req.Path)
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apierr.Validationf("encode request body: %v", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, apierr.Transport(err)
	}

	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	c.logger.Debug("request", "method", req.Method, "url", endpoint)

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, apierr.Transport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.Transport(err)
	}

	if resp.StatusCode >= 400 {
		apiErr := apierr.FromResponse(resp.StatusCode, data, retryAfter(resp))
		c.logger.Debug("request failed",
			"method", req.Method, "url", endpoint, "status", resp.StatusCode, "error", apiErr.Message)
		return nil, apiErr
	}
	return data, nil
}

// JSON executes a request and decodes the JSON response into out. A nil out
// discards the body. An empty or non-JSON body with a non-nil out is an
// error only if decoding fails.
func (c *Client) JSON(ctx context.Context, req Request, out any) error {
	data, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

func decodeInto(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apierr.Transport(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
