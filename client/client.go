package client

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

	"github.com/sagarc03/sigv4auth"
	sigv4http "github.com/sagarc03/sigv4auth/http"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 10 * time.Second

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4 << 10

// Client performs validations against a sigv4auth server.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. A nil client is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP client timeout. It applies to a copy of the
// client, so a client passed to WithHTTPClient is left untouched.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// New creates a Client for the server at endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}

	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	c := &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	return c, nil
}

// ValidateRequest asks the server whether signature is valid for stringToSign
// under accessKey. As with sigv4auth.Validator, a rejected signature is
// false with a nil error. A server that cannot reach its key store, or that
// cannot be reached at all, yields an error wrapping
// sigv4auth.ErrResolverUnavailable.
func (c *Client) ValidateRequest(ctx context.Context, stringToSign, signature, accessKey string) (bool, error) {
	body, err := json.Marshal(sigv4http.ValidateRequest{
		StringToSign: stringToSign,
		Signature:    signature,
		AccessKey:    accessKey,
	})
	if err != nil {
		return false, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/validate", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("validate: %w: %w", sigv4auth.ErrResolverUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var result sigv4http.ValidateResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return false, fmt.Errorf("decode response: %w: %w", ErrUnexpectedResponse, err)
		}
		return result.Valid, nil
	case http.StatusServiceUnavailable:
		return false, fmt.Errorf("validate: %w: %s", sigv4auth.ErrResolverUnavailable, readError(resp.Body))
	default:
		return false, fmt.Errorf("validate: %w: status %d: %s", ErrUnexpectedResponse, resp.StatusCode, readError(resp.Body))
	}
}

// Health reports whether the server answers its liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health: %w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}
	return nil
}

func readError(r io.Reader) string {
	var e sigv4http.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&e); err != nil || e.Message == "" {
		return "no error message"
	}
	return e.Message
}
