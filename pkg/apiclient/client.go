// Package apiclient talks to the inventory HTTP API and translates its wire
// format into catalog products.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inventory/pkg/catalog"
)

// DefaultTimeout bounds every request unless WithTimeout or WithHTTPClient says otherwise.
const DefaultTimeout = 15 * time.Second

// defaultStatus is sent with every create and update.
const defaultStatus = "Active"

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is an inventory API client. It is safe for concurrent use.
type Client struct {
	baseURL       string
	origin        *url.URL
	httpClient    *http.Client
	timeout       time.Duration
	strictNumbers bool
	log           zerolog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger logs requests at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithStrictNumbers makes malformed price or stock values an error instead
// of reading them as zero.
func WithStrictNumbers() Option {
	return func(c *Client) { c.strictNumbers = true }
}

// New creates a client for the API rooted at baseURL, for example
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: base,
		origin:  &url.URL{Scheme: u.Scheme, Host: u.Host},
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// SetToken replaces the bearer token used by later requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// List returns every product. A payload that is not an array yields an empty list.
func (c *Client) List(ctx context.Context) ([]catalog.Product, error) {
	raw, err := c.do(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}

	var rows []wireProduct
	if err := json.Unmarshal(raw, &rows); err != nil {
		c.log.Warn().Err(err).Msg("product list is not an array")
		return []catalog.Product{}, nil
	}

	products := make([]catalog.Product, 0, len(rows))
	for _, row := range rows {
		p, err := c.toProduct(row)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Get returns one product. A missing product yields an error for which
// IsNotFound is true.
func (c *Client) Get(ctx context.Context, id string) (catalog.Product, error) {
	raw, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil)
	if err != nil {
		return catalog.Product{}, err
	}

	var row wireProduct
	if err := json.Unmarshal(raw, &row); err != nil {
		return catalog.Product{}, fmt.Errorf("decode product %s: %w", id, err)
	}
	return c.toProduct(row)
}

// Create validates input, stores it and reads the stored product back.
func (c *Client) Create(ctx context.Context, input catalog.ProductInput) (catalog.Product, error) {
	if err := catalog.Check(input); err != nil {
		return catalog.Product{}, err
	}

	payload := map[string]any{
		"name":        *input.Name,
		"description": valueOr(input.Description, ""),
		"productCode": valueOr(input.SKU, ""),
		"image":       valueOr(input.ImageURL, ""),
		"status":      defaultStatus,
	}
	if input.Price != nil {
		payload["price"] = *input.Price
	}
	if input.Stock != nil {
		payload["stock"] = int(*input.Stock)
	}

	raw, err := c.do(ctx, http.MethodPost, "/products", payload)
	if err != nil {
		return catalog.Product{}, err
	}

	var result struct {
		ProductID json.RawMessage `json:"productId"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return catalog.Product{}, fmt.Errorf("decode create response: %w", err)
	}
	id := rawString(result.ProductID)
	if id == "" {
		return catalog.Product{}, errors.New("create response carries no productId")
	}
	return c.Get(ctx, id)
}

// Update sends only the fields present in input, then reads the product back.
// The server requires a name on every update, so input must carry one.
func (c *Client) Update(ctx context.Context, id string, input catalog.ProductInput) (catalog.Product, error) {
	if err := catalog.Check(input); err != nil {
		return catalog.Product{}, err
	}

	payload := map[string]any{
		"name":   *input.Name,
		"status": defaultStatus,
	}
	if input.Description != nil {
		payload["description"] = *input.Description
	}
	if input.Price != nil {
		payload["price"] = *input.Price
	}
	if input.Stock != nil {
		payload["stock"] = int(*input.Stock)
	}
	if input.SKU != nil {
		payload["productCode"] = *input.SKU
	}
	if input.ImageURL != nil {
		payload["image"] = *input.ImageURL
	}

	if _, err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), payload); err != nil {
		return catalog.Product{}, err
	}
	return c.Get(ctx, id)
}

// Delete removes a product.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil)
	return err
}

// Session is the result of a successful login.
type Session struct {
	Token string `json:"token"`
	User  struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

// Login exchanges credentials for a token and uses it for later requests.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	raw, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	c.SetToken(session.Token)
	return &session, nil
}

// ResolveImageURL makes a server-relative image path absolute against the
// API origin. Absolute URLs and the empty string are returned unchanged.
func (c *Client) ResolveImageURL(image string) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}
	if u, err := url.Parse(image); err == nil && u.IsAbs() {
		return image
	}
	if !strings.HasPrefix(image, "/") {
		image = "/" + image
	}
	return c.origin.String() + image
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &APIError{StatusCode: status, Message: payload.Error}
	}
	return &APIError{StatusCode: status, Message: "HTTP " + strconv.Itoa(status)}
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
