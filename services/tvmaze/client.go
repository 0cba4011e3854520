package tvmaze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v4"
)

const (
	// DefaultBaseURL is the public TVMaze API root.
	DefaultBaseURL = "https://api.tvmaze.com"

	defaultTimeout  = 15 * time.Second
	maxResponseSize = 20 * 1024 * 1024 // 20 MB; full-day schedules are large
	retryAttempts   = 3
	retryBaseDelay  = 500 * time.Millisecond
)

// Client is a minimal TVMaze API client covering the two schedule endpoints.
// The base URL is injected at construction so tests can point it at a local
// server.
type Client struct {
	baseURL string
	httpc   *http.Client

	// TVMaze rate-limits aggressively; space requests out a little.
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// NewClient creates a TVMaze client. An empty baseURL selects the public
// API; a zero timeout selects the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:     baseURL,
		httpc:       &http.Client{Timeout: timeout},
		minInterval: 100 * time.Millisecond,
	}
}

// Schedule fetches the network TV schedule for a date and country.
// GET {base}/schedule?date=YYYY-MM-DD&country=XX
func (c *Client) Schedule(ctx context.Context, date, country string) ([]any, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("country", country)
	return c.getItems(ctx, "/schedule", q)
}

// WebSchedule fetches the web/streaming schedule for a date. The endpoint
// takes no country parameter.
// GET {base}/schedule/web?date=YYYY-MM-DD
func (c *Client) WebSchedule(ctx context.Context, date string) ([]any, error) {
	q := url.Values{}
	q.Set("date", date)
	return c.getItems(ctx, "/schedule/web", q)
}

// getItems performs a GET with retries on transient failures and decodes the
// JSON array into generic values for the normalizer. Non-retryable responses
// (4xx other than 429, undecodable bodies) fail immediately.
func (c *Client) getItems(ctx context.Context, path string, q url.Values) ([]any, error) {
	endpoint := c.baseURL + path + "?" + q.Encode()

	var items []any
	err := retry.Do(
		func() error {
			c.throttle()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("tvmaze %s: %s", path, resp.Status)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("tvmaze %s: %s", path, resp.Status))
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			if err != nil {
				return err
			}

			items = nil
			if err := json.Unmarshal(body, &items); err != nil {
				return retry.Unrecoverable(fmt.Errorf("tvmaze %s: decode: %w", path, err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) throttle() {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()
	if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}
