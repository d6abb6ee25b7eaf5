package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"
)

const (
	// DefaultBaseURL is the storefront API root used when none is configured.
	DefaultBaseURL = "http://127.0.0.1:5000/api"
	userAgent      = "shopcli/1.0"
)

// ClientOptions tunes the REST client.
type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

// Client reads the category and product collections from the storefront API.
type Client struct {
	httpClient *resty.Client
	baseURL    string
}

// NewClient creates a storefront API client against DefaultBaseURL.
func NewClient() *Client {
	return NewClientWithOptions(ClientOptions{})
}

// NewClientWithBaseURL creates a client with a custom base URL (for testing).
func NewClientWithBaseURL(baseURL string) *Client {
	return NewClientWithOptions(ClientOptions{BaseURL: baseURL})
}

// NewClientWithOptions creates a client from explicit options. Zero values
// fall back to defaults.
func NewClientWithOptions(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(250*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	return c.httpClient.Close()
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	reqURL := c.baseURL + path

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(reqURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode(), reqURL)
	}
	return []byte(resp.String()), nil
}

// FetchCategoriesRaw returns the undecoded category collection.
func (c *Client) FetchCategoriesRaw(ctx context.Context) ([]byte, error) {
	body, err := c.get(ctx, "/categories")
	if err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	return body, nil
}

// FetchProductsRaw returns the undecoded product collection.
func (c *Client) FetchProductsRaw(ctx context.Context) ([]byte, error) {
	body, err := c.get(ctx, "/products")
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}
	return body, nil
}

// FetchCategories fetches and decodes the category tree.
func (c *Client) FetchCategories(ctx context.Context) ([]Category, error) {
	body, err := c.FetchCategoriesRaw(ctx)
	if err != nil {
		return nil, err
	}
	return ParseCategories(body)
}

// FetchProducts fetches and decodes the flat product list.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	body, err := c.FetchProductsRaw(ctx)
	if err != nil {
		return nil, err
	}
	return ParseProducts(body)
}
