// Package source fetches dashboard data from the REST backend.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aqdash/internal/model"
	"aqdash/internal/util"
	"aqdash/internal/util/logx"
	"aqdash/internal/version"
)

// ErrNotFound is returned (wrapped in an UpstreamError) for 404 responses.
var ErrNotFound = errors.New("not found")

// UpstreamError reports a failed call to the backend. Status is 0 when no
// response was received.
type UpstreamError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Endpoint, e.Status, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client talks to the backend rooted at a base URL such as
// http://localhost:8080/api.
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) Global(ctx context.Context) (model.GlobalStats, error) {
	var g model.GlobalStats
	err := c.getJSON(ctx, "/global", &g)
	return g, err
}

func (c *Client) Cities(ctx context.Context) ([]model.CityReading, error) {
	var rows []model.CityReading
	if err := c.getJSON(ctx, "/cities", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Summary(ctx context.Context) (model.Summary, error) {
	var s model.Summary
	err := c.getJSON(ctx, "/analytics/summary", &s)
	return s, err
}

func (c *Client) Timeline(ctx context.Context) ([]model.RequestLog, error) {
	var rows []model.RequestLog
	if err := c.getJSON(ctx, "/analytics/timeline", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Recommendation fetches AI recommendations for city. An unknown city yields
// an error matching ErrNotFound.
func (c *Client) Recommendation(ctx context.Context, city string) (model.Recommendation, error) {
	var r model.Recommendation
	err := c.getJSON(ctx, "/ai/recommendations/"+url.PathEscape(city), &r)
	return r, err
}

// Refresh asks the backend to reload its air-quality data.
func (c *Client) Refresh(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/refresh")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Endpoint: path, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// do returns the response only for 2xx statuses; the caller closes the body.
func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return nil, &UpstreamError{Endpoint: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logx.Warnf("source: %s %s: %v", method, path, err)
		return nil, &UpstreamError{Endpoint: path, Err: err}
	}
	logx.Debugf("source: %s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	blob, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	body := util.RedactPII(strings.TrimSpace(string(blob)))
	if resp.StatusCode == http.StatusNotFound {
		return nil, &UpstreamError{Endpoint: path, Status: resp.StatusCode, Err: ErrNotFound}
	}
	logx.Warnf("source: %s %s status=%d body=%s", method, path, resp.StatusCode, body)
	if body == "" {
		body = http.StatusText(resp.StatusCode)
	}
	return nil, &UpstreamError{Endpoint: path, Status: resp.StatusCode, Err: errors.New(body)}
}
