// Package push delivers change notifications to the outside world. The
// webhook notifier posts JSON to a configured endpoint; the log notifier is
// the no-infrastructure fallback.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/katchaapp/katcha/pkg/config"
	"github.com/katchaapp/katcha/pkg/logging"
)

// Notifier raises a user-facing notification. Delivery is fire-and-forget;
// callers log failures and move on.
type Notifier interface {
	Send(ctx context.Context, title, body string, metadata map[string]string) error
}

// WebhookNotifier posts notifications as JSON to a configured URL
type WebhookNotifier struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

// NewWebhookNotifier creates a webhook notifier from push configuration
func NewWebhookNotifier(cfg *config.PushConfig) *WebhookNotifier {
	return &WebhookNotifier{
		url:    cfg.WebhookURL,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logging.GetLogger().With(zap.String("component", "push")),
	}
}

type webhookPayload struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Metadata map[string]string `json:"metadata,omitempty"`
	SentAt   time.Time         `json:"sent_at"`
}

// Send posts the notification payload to the webhook
func (n *WebhookNotifier) Send(ctx context.Context, title, body string, metadata map[string]string) error {
	payload, err := json.Marshal(webhookPayload{
		Title:    title,
		Body:     body,
		Metadata: metadata,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	n.logger.Debug("notification delivered", zap.String("title", title))
	return nil
}

// LogNotifier writes notifications to the service log only
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{
		logger: logging.GetLogger().With(zap.String("component", "push")),
	}
}

// Send logs the notification
func (n *LogNotifier) Send(_ context.Context, title, body string, metadata map[string]string) error {
	n.logger.Info("notification",
		zap.String("title", title),
		zap.String("body", body),
		zap.Any("metadata", metadata))
	return nil
}

// FromConfig picks the webhook notifier when a URL is configured, the log
// notifier otherwise
func FromConfig(cfg *config.PushConfig) Notifier {
	if cfg.WebhookURL != "" {
		return NewWebhookNotifier(cfg)
	}
	return NewLogNotifier()
}
