// Package catalog is the HTTP client for the storefront REST API: products, reviews,
// categories, accounts, orders and payments.
package catalog

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

	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout             = 10 * time.Second
	errorBodyReadLimit   int64 = 4096
	successBodyReadLimit int64 = 8 << 20
)

// Client talks to the storefront API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logg       *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default traced HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// NewClient builds a client rooted at baseURL, e.g. https://shop.example.com/api.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("catalog base url is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse catalog base url: %w", err)
	}

	client := &Client{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logg: logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	token  string
	header http.Header
	body   any
}

// do executes req and decodes a 2xx body into out (when non-nil). Transport failures and non-2xx
// answers become NETWORK_ERROR, carrying the server's message when it sent one.
func (c *Client) do(ctx context.Context, req request, out any) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	for k, values := range req.header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{
			"method": req.method,
			"path":   req.path,
			"error":  err.Error(),
		}), "catalog.request_failed")
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "could not reach the store").
			WithDetails(map[string]any{"path": req.path})
	}
	defer func() { _ = resp.Body.Close() }()

	c.logg.Debug(c.logg.WithFields(ctx, map[string]any{
		"method":      req.method,
		"path":        req.path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}), "catalog.request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return statusError(req.path, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, successBodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "read response")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode response").
			WithDetails(map[string]any{"path": req.path})
	}
	return nil
}

func statusError(path string, status int, raw []byte) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)
	message := strings.TrimSpace(body.Message)
	if message == "" {
		message = fmt.Sprintf("store answered %d", status)
	}
	return pkgerrors.Wrap(pkgerrors.CodeNetwork, fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(raw))), message).
		WithDetails(map[string]any{"path": path, "status": status})
}

// decodeArray unmarshals raw into out when raw is a JSON array and leaves out empty otherwise.
func decodeArray[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode list")
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
