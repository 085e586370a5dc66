// Package notify delivers the final review outcome back to the
// submission channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Func is the reply side-channel: invoked 0 or 1 times per review flow
// with the final human-readable outcome text.
type Func func(ctx context.Context, text string) error

// Webhook posts outcome text as JSON to a configured URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook constructs a webhook notifier.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Notify posts the outcome text.
func (w *Webhook) Notify(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("notify encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Func adapts the webhook to the reply side-channel signature.
func (w *Webhook) Func() Func {
	return w.Notify
}
