// Package productsapi is the HTTP client for the remote product catalog
// service. Responses arrive wrapped in a {"data": ...} envelope.
package productsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"comicstore-go/internal/domain/catalog"
	"comicstore-go/internal/platform/errors"
)

const defaultTimeout = 10 * time.Second

// Client talks to the /products endpoints of the remote catalog service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client rooted at baseURL (e.g. "http://host:5000/api").
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

type dataEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// GetAll fetches every remote product. A missing data field reads as an
// empty list.
func (c *Client) GetAll(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.call(ctx, http.MethodGet, "/products", "products.get_all", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID fetches a single product. An unknown id surfaces as a KindCatalog
// error.
func (c *Client) GetByID(ctx context.Context, id int) (catalog.Product, error) {
	var p catalog.Product
	err := c.call(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), "products.get_by_id", nil, &p)
	return p, err
}

// Create registers a new product and returns it as stored by the service,
// id included.
func (c *Client) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	var created catalog.Product
	err := c.call(ctx, http.MethodPost, "/products", "products.create", &p, &created)
	return created, err
}

// Update replaces the product with the given id.
func (c *Client) Update(ctx context.Context, id int, p catalog.Product) (catalog.Product, error) {
	var updated catalog.Product
	err := c.call(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), "products.update", &p, &updated)
	return updated, err
}

// Delete removes the product with the given id.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), "products.delete", nil, nil)
}

// Healthy reports whether the service answers its /health probe. Any
// transport problem reads as unhealthy rather than an error.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) call(ctx context.Context, method, path, op string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := sonic.Marshal(payload)
		if err != nil {
			return errors.Wrap(errors.KindTransport, op, "failed to encode request", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(errors.KindTransport, op, "failed to build request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.KindTransport, op, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.KindTransport, op, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope dataEnvelope
		message := fmt.Sprintf("service returned status %d", resp.StatusCode)
		if err := sonic.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
			message = envelope.Error
		}
		return errors.New(errors.KindCatalog, op, message)
	}

	if out == nil {
		return nil
	}

	var envelope dataEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return errors.Wrap(errors.KindTransport, op, "malformed response body", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(envelope.Data, out); err != nil {
		return errors.Wrap(errors.KindTransport, op, "malformed data payload", err)
	}
	return nil
}
