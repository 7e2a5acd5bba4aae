package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"chitieu/internal/core"
)

// eventEntriesCreated is the only event shape currently delivered.
const eventEntriesCreated = "entries.created"

type payload struct {
	Event     string       `json:"event"`
	Timestamp time.Time    `json:"timestamp"`
	Entries   []core.Entry `json:"entries"`
}

// Notifier delivers entry events to a user-configured webhook URL.
// Delivery is best effort: transient failures are retried with backoff,
// a final failure is reported to the caller for logging only.
type Notifier struct {
	client *retryablehttp.Client
}

func NewNotifier(timeout time.Duration) *Notifier {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil
	return &Notifier{client: client}
}

// Notify POSTs the created entries to the webhook URL as JSON.
func (n *Notifier) Notify(ctx context.Context, webhookURL string, entries []core.Entry) error {
	if webhookURL == "" || len(entries) == 0 {
		return nil
	}

	body, err := json.Marshal(payload{
		Event:     eventEntriesCreated,
		Timestamp: time.Now().UTC(),
		Entries:   entries,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, webhookURL, body)
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
