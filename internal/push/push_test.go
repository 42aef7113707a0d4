package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/katchaapp/katcha/pkg/config"
)

func TestWebhookNotifierSend(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(&config.PushConfig{WebhookURL: srv.URL, Timeout: 5 * time.Second})
	n.logger = zap.NewNop()

	err := n.Send(context.Background(), "@alice Updated", "Followers: +3", map[string]string{"target_id": "7"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got.Title != "@alice Updated" || got.Body != "Followers: +3" {
		t.Errorf("payload = %+v", got)
	}
	if got.Metadata["target_id"] != "7" {
		t.Errorf("metadata = %+v", got.Metadata)
	}
	if got.SentAt.IsZero() {
		t.Error("sent_at not set")
	}
}

func TestWebhookNotifierFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(&config.PushConfig{WebhookURL: srv.URL, Timeout: 5 * time.Second})
	n.logger = zap.NewNop()

	if err := n.Send(context.Background(), "t", "b", nil); err == nil {
		t.Fatal("Send() should fail on a non-2xx response")
	}
}

func TestFromConfig(t *testing.T) {
	if _, ok := FromConfig(&config.PushConfig{WebhookURL: "https://hooks.example.com/x", Timeout: time.Second}).(*WebhookNotifier); !ok {
		t.Error("configured URL should select the webhook notifier")
	}
	if _, ok := FromConfig(&config.PushConfig{}).(*LogNotifier); !ok {
		t.Error("empty URL should select the log notifier")
	}
}
