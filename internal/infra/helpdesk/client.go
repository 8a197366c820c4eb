// Package helpdesk is the typed wrapper over the upstream ticketing HTTP
// API. It is the sole ingress/egress with the upstream: authentication
// (pre-shared Basic credential plus API-version header) is hidden here,
// and every operation fails with UpstreamError, TransportError, or
// DecodeError. Retries are not performed at this layer; the engine's
// tolerance for transient failure is "try again next cycle".
package helpdesk

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds the upstream connection settings.
type Config struct {
	// BaseURL is the API prefix, e.g. "https://helpdesk.example.com/api".
	BaseURL string

	// APIVersion is sent as X-API-Version with every request.
	APIVersion string

	// EncodedCredentials is the base64 Basic credential.
	EncodedCredentials string

	// CommentsPath is the deployment-specific comments endpoint as a
	// printf pattern over the ticket id, e.g. "/task/%d/comment".
	CommentsPath string

	// LifetimePath is the deployment-specific lifetime-events endpoint.
	LifetimePath string

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// Client is the upstream API client. It is stateless and safe for
// concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a client for the given upstream. Peer verification
// is disabled: the target deployment serves a self-signed certificate.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.CommentsPath == "" {
		cfg.CommentsPath = "/task/%d/comment"
	}
	if cfg.LifetimePath == "" {
		cfg.LifetimePath = "/tasklifetime"
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, // self-signed upstream
				},
			},
		},
	}
}

// get issues a GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// send issues a method with a JSON body and decodes the response into
// out when out is non-nil.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &DecodeError{Cause: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &TransportError{Cause: err}
	}
	req.Header.Set("Authorization", "Basic "+c.cfg.EncodedCredentials)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Version", c.cfg.APIVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Cause: err}
	}
	return nil
}
