package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	retry "github.com/avast/retry-go/v4"
)

const (
	defaultTimeout = 10 * time.Second
	sendAttempts   = 3
	sendBaseDelay  = time.Second
)

// Client posts messages to a Slack incoming webhook.
type Client struct {
	webhookURL string
	httpc      *http.Client
}

// NewClient creates a webhook client. The webhook URL carries the
// credential, so it is never logged.
func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpc:      &http.Client{Timeout: defaultTimeout},
	}
}

// Send posts a message, retrying on network errors, 429 and 5xx responses.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c.webhookURL == "" {
		return fmt.Errorf("slack: webhook URL not configured")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return nil
			}
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err = fmt.Errorf("slack: webhook returned %s: %s", resp.Status, bytes.TrimSpace(body))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return err
			}
			return retry.Unrecoverable(err)
		},
		retry.Context(ctx),
		retry.Attempts(sendAttempts),
		retry.Delay(sendBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}
