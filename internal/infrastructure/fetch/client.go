package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"FeedDigest/internal/domain"
	"FeedDigest/internal/ports"
)

const userAgent = "FeedDigest/1.0"

// Client retrieves raw source content over HTTP. Every failure mode maps to
// *domain.FetchError so the pipeline can log and skip the source.
type Client struct {
	http *http.Client
}

var _ ports.Fetcher = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a 20s timeout default.
func NewClient(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{http: client}
}

// Fetch performs a GET and returns the body on 2xx.
func (c *Client) Fetch(ctx context.Context, source, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.FetchError{Source: source, URL: rawURL, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Source: source, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.FetchError{Source: source, URL: rawURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Source: source, URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	return body, nil
}
