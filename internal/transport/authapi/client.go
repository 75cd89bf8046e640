// Package authapi is the HTTP client for the remote authentication service.
// The service is consumed, never implemented here: credentials are forwarded
// and the returned bearer token is handled as an opaque string.
package authapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"comicstore-go/internal/platform/errors"
)

const defaultTimeout = 10 * time.Second

// Client talks to the auth endpoints: POST /auth/login, POST /auth/register
// and GET /auth/validate.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client rooted at baseURL (e.g. "http://host:8080/api").
// A non-positive timeout falls back to a bounded default so a hung backend
// surfaces as a transport failure instead of blocking forever.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient overrides the underlying HTTP client (useful for tests).
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	if client != nil {
		c.httpClient = client
	}
	return c
}

type authEnvelope struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
	Error   string `json:"error"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. A declined login returns a
// KindAuth error carrying the server-supplied message; network problems
// return KindTransport errors.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.submit(ctx, "/auth/login", "auth.login", loginRequest{
		Email:    email,
		Password: password,
	})
}

// Register creates an account and returns the issued bearer token, with the
// same error contract as Login.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	return c.submit(ctx, "/auth/register", "auth.register", registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
}

func (c *Client) submit(ctx context.Context, path, op string, payload any) (string, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(errors.KindTransport, op, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(errors.KindTransport, op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.KindTransport, op, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(errors.KindTransport, op, "failed to read response", err)
	}

	var envelope authEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return "", errors.Wrap(errors.KindTransport, op, "malformed response body", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && envelope.Success {
		return envelope.Data, nil
	}

	message := envelope.Error
	if message == "" {
		message = "authentication rejected"
	}
	return "", errors.New(errors.KindAuth, op, message)
}

// Validate checks the token against GET /auth/validate with a bearer header.
// nil means the server accepted the token; a KindAuth error means it was
// rejected; anything else is a transport failure.
func (c *Client) Validate(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/validate", nil)
	if err != nil {
		return errors.Wrap(errors.KindTransport, "auth.validate", "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.KindTransport, "auth.validate", "request failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return errors.New(errors.KindAuth, "auth.validate", "token rejected")
}
