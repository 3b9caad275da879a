// Package notify posts fire-and-forget webhook notifications. Delivery
// is best-effort: failures are logged at debug and never propagate.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/salesboard/pkg/logger"
)

const defaultTimeout = 5 * time.Second

// Notifier delivers a JSON payload somewhere out of band.
type Notifier interface {
	Post(ctx context.Context, payload any)
}

// Webhook implements Notifier against a single webhook URL.
type Webhook struct {
	url    string
	client *http.Client
	log    logger.Logger
}

// NewWebhook creates a webhook notifier. An empty URL disables delivery.
func NewWebhook(url string, log logger.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
		log:    log,
	}
}

// Post delivers payload as JSON. Errors are swallowed.
func (w *Webhook) Post(ctx context.Context, payload any) {
	if w.url == "" {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		w.log.Debug(ctx, "webhook payload encode failed", logger.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(raw))
	if err != nil {
		w.log.Debug(ctx, "webhook request build failed", logger.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		w.log.Debug(ctx, "webhook delivery failed", logger.Error(err))
		return
	}
	_ = resp.Body.Close()
}

// Noop is a Notifier that drops every payload.
type Noop struct{}

// Post discards the payload.
func (Noop) Post(context.Context, any) {}
