// Package notify delivers admin notifications to the surrounding platform's
// notification webhook. Delivery is best effort: the import path never
// blocks or fails on a notification.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// WebhookNotifier POSTs events as JSON to a configured webhook URL.
type WebhookNotifier struct {
	httpClient  *http.Client
	url         string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewWebhookNotifier creates a notifier. An empty URL yields a no-op
// notifier, so callers never need a nil check.
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		url: url,
		// Notifications are advisory; one per second with a small burst is
		// plenty and keeps a bulk approve from hammering the webhook.
		rateLimiter: rate.NewLimiter(rate.Limit(1), 5),
		logger:      logger,
	}
}

// Notify delivers one event. Failures are logged and swallowed.
func (n *WebhookNotifier) Notify(ctx context.Context, event string, payload map[string]interface{}) {
	if n.url == "" {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"event":   event,
		"payload": payload,
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		n.logger.Warn("notification marshal failed", zap.String("event", event), zap.Error(err))
		return
	}

	// Retry once for transient failures.
	for attempt := 1; attempt <= 2; attempt++ {
		if err := n.rateLimiter.Wait(ctx); err != nil {
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
		if err != nil {
			n.logger.Warn("notification request build failed", zap.String("event", event), zap.Error(err))
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "Campnest/1.0")

		resp, err := n.httpClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode < 300 {
				return
			}
			n.logger.Warn("notification rejected",
				zap.String("event", event),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
			)
		} else {
			n.logger.Warn("notification delivery failed",
				zap.String("event", event),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		time.Sleep(time.Duration(attempt*500) * time.Millisecond)
	}
}
