package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/totegamma/admindata"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "admindata-client"
)

// NetworkError is a non-2xx answer. Message is the "message" member of the
// body when there is one.
type NetworkError struct {
	Status  int
	Message string
}

func (e *NetworkError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

type Option func(*Client)

// WithToken sends token as the bearer session on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client.Transport == nil {
		c.client.Transport = c
	}
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// Do sends body as JSON and decodes the answer into response. Either may be
// nil.
func (c *Client) Do(ctx context.Context, method, path string, body any, response any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newNetworkError(resp)
	}

	if response == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func newNetworkError(resp *http.Response) *NetworkError {
	netErr := &NetworkError{Status: resp.StatusCode}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return netErr
	}
	var msg admindata.Message
	if json.Unmarshal(b, &msg) == nil {
		netErr.Message = msg.Message
	}
	return netErr
}

// Get fetches path and decodes it as T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var v T
	err := c.Do(ctx, http.MethodGet, path, nil, &v)
	return v, err
}

func (c *Client) ListTypes(ctx context.Context) ([]admindata.RecordType, error) {
	return Get[[]admindata.RecordType](ctx, c, admindata.TypesPath)
}

func (c *Client) GetType(ctx context.Context, idOrSlug string) (admindata.RecordType, error) {
	return Get[admindata.RecordType](ctx, c, admindata.TypePath(idOrSlug))
}

func (c *Client) ListEntities(ctx context.Context, typeID string) ([]admindata.Entity, error) {
	return Get[[]admindata.Entity](ctx, c, admindata.TypeEntitiesPath(typeID))
}
