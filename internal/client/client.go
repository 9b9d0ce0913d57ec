// Package client reads the public blog API over HTTP. It implements
// listing.Fetcher so a listing.Controller can drive a remote server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Albion-ops/bytewave-hub/internal/listing"
	"github.com/Albion-ops/bytewave-hub/internal/models"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client calls a bytewave-hub server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// FetchPosts loads one listing page for state.
func (c *Client) FetchPosts(ctx context.Context, state listing.State) (*listing.Page, error) {
	var page listing.Page
	if err := c.get(ctx, "/v1/posts", state.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Categories lists all categories.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var response struct {
		Data []models.Category `json:"data"`
	}
	if err := c.get(ctx, "/v1/categories", nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

var _ listing.Fetcher = (*Client)(nil)
