// Package remote fetches donors.json and silent-donations.json over HTTP, the
// same way a static site would serve them next to its pages.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"charity/internal/core"
	"charity/internal/sources"
)

type Client struct {
	base *url.URL
	http *http.Client
}

var _ sources.Source = (*Client)(nil)

// New validates baseURL and builds a client with a bounded request timeout.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse donors base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("donors base URL must be http or https, got %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// ReadDonors implements sources.DonorReader
func (c *Client) ReadDonors(ctx context.Context) ([]core.Donor, error) {
	body, err := c.get(ctx, sources.DonorsFile)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return sources.DecodeDonors(body)
}

// ReadSilent implements sources.SilentReader
func (c *Client) ReadSilent(ctx context.Context) ([]core.Money, error) {
	body, err := c.get(ctx, sources.SilentFile)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return sources.DecodeSilent(body)
}

func (c *Client) get(ctx context.Context, name string) (io.ReadCloser, error) {
	target := c.base.JoinPath(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", name, resp.StatusCode)
	}
	return resp.Body, nil
}
