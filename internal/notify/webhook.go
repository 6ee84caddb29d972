package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ashureev/biaslens/internal/domain"
)

// DefaultWebhookTimeout bounds one webhook delivery.
const DefaultWebhookTimeout = 10 * time.Second

// Webhook POSTs analyses as JSON to a fixed URL.
type Webhook struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// NewWebhook creates a webhook notifier. An empty url yields a notifier that
// does nothing.
func NewWebhook(url string, timeout time.Duration, client *http.Client) *Webhook {
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Webhook{url: url, timeout: timeout, client: client}
}

// Notify sends the record. Non-2xx responses and timeouts are errors.
func (w *Webhook) Notify(ctx context.Context, record domain.AnalysisRecord) error {
	if w.url == "" {
		return nil
	}

	body, err := json.Marshal(NewPayload(record))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
