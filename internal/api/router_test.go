package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/katchaapp/katcha/internal/detector"
	"github.com/katchaapp/katcha/internal/katcha"
	"github.com/katchaapp/katcha/internal/models"
	"github.com/katchaapp/katcha/internal/store"
	"github.com/katchaapp/katcha/internal/targets"
	"github.com/katchaapp/katcha/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	engine *gin.Engine
	notifs *store.MemoryNotifications
	snaps  *store.MemorySnapshots
	state  *store.MemoryState
}

func newFixture(t *testing.T, backend http.HandlerFunc) (*fixture, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	state := store.NewMemoryState()
	state.Set(ctx, models.StateKeyAccessToken, "access-1")
	state.Set(ctx, models.StateKeyRefreshToken, "refresh-1")

	client := katcha.New(&config.BackendConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, store.NewTokenStore(state, "key-1", "secret-1"))

	snaps := store.NewMemorySnapshots()
	notifs := store.NewMemoryNotifications()
	repo := targets.NewRepository(client, nil, snaps, 0)
	det := detector.New(client, repo, snaps, notifs, state, nil)

	engine := gin.New()
	NewRouter(client, repo, notifs, det).SetupRoutes(engine)
	return &fixture{engine: engine, notifs: notifs, snaps: snaps, state: state}, srv
}

func (f *fixture) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	f, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	w := f.request(t, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "katcha-api") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestTargetEndpoints(t *testing.T) {
	f, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/targets" && r.Method == http.MethodGet:
			fmt.Fprint(w, `{"targets":[{"id":1,"platform":"instagram","username":"alice"}]}`)
		case r.URL.Path == "/api/targets" && r.Method == http.MethodPost:
			fmt.Fprint(w, `{"success":true,"target":{"id":1,"platform":"instagram","username":"alice"}}`)
		case r.URL.Path == "/api/targets" && r.Method == http.MethodDelete:
			fmt.Fprint(w, `{"success":true}`)
		case r.URL.Path == "/api/social":
			fmt.Fprint(w, `{"follower_count":7,"following_count":3}`)
		}
	})

	w := f.request(t, http.MethodPost, "/api/targets", `{"platform":"instagram","username":"alice"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/targets = %d, want 201: %s", w.Code, w.Body.String())
	}

	w = f.request(t, http.MethodGet, "/api/targets", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/targets = %d, want 200", w.Code)
	}
	var listResp struct {
		Targets []models.Target `json:"targets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(listResp.Targets) != 1 || listResp.Targets[0].Followers != 7 {
		t.Errorf("list = %+v", listResp.Targets)
	}

	w = f.request(t, http.MethodDelete, "/api/targets/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE /api/targets/1 = %d, want 200", w.Code)
	}

	w = f.request(t, http.MethodDelete, "/api/targets/not-a-number", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("DELETE with bad id = %d, want 400", w.Code)
	}
}

func TestAddTargetValidation(t *testing.T) {
	f, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no backend request expected for invalid input")
	})

	w := f.request(t, http.MethodPost, "/api/targets", `{"username":"alice"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing platform = %d, want 400", w.Code)
	}

	w = f.request(t, http.MethodPost, "/api/targets", `{"platform":"myspace","username":"tom"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid platform = %d, want 400", w.Code)
	}

	var apiErr Error
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if apiErr.Code != http.StatusBadRequest || apiErr.Message == "" {
		t.Errorf("error envelope = %+v, want code 400 with a message", apiErr)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	f, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := context.Background()

	n := models.NotificationFromChange(models.Change{
		TargetID: 1, Username: "alice", Platform: models.PlatformInstagram,
		FollowersDiff: 3,
	}, time.Now())
	f.notifs.Append(ctx, n)

	w := f.request(t, http.MethodGet, "/api/notifications", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/notifications = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "@alice Updated") {
		t.Errorf("body = %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"target_id":1`) {
		t.Errorf("notification missing target link: %s", w.Body.String())
	}

	w = f.request(t, http.MethodGet, "/api/notifications/unread-count", "")
	if !strings.Contains(w.Body.String(), `"unread":1`) {
		t.Errorf("unread body = %s", w.Body.String())
	}

	w = f.request(t, http.MethodPost, "/api/notifications/"+n.ID+"/read", "")
	if w.Code != http.StatusOK {
		t.Fatalf("mark read = %d", w.Code)
	}
	w = f.request(t, http.MethodGet, "/api/notifications/unread-count", "")
	if !strings.Contains(w.Body.String(), `"unread":0`) {
		t.Errorf("unread after mark = %s", w.Body.String())
	}

	w = f.request(t, http.MethodDelete, "/api/notifications", "")
	if w.Code != http.StatusOK {
		t.Fatalf("clear = %d", w.Code)
	}
	list, _ := f.notifs.List(ctx)
	if len(list) != 0 {
		t.Errorf("notifications after clear = %d, want 0", len(list))
	}
}

func TestStatusEndpoint(t *testing.T) {
	f, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	w := f.request(t, http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"last_checked":null`) {
		t.Errorf("status before any cycle = %s", w.Body.String())
	}

	f.state.Set(context.Background(), models.StateKeyLastChecked, "2026-08-30T10:00:00Z")
	w = f.request(t, http.MethodGet, "/api/status", "")
	if !strings.Contains(w.Body.String(), "2026-08-30T10:00:00Z") {
		t.Errorf("status after cycle = %s", w.Body.String())
	}
}

func TestTriggerPoll(t *testing.T) {
	f, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/targets":
			fmt.Fprint(w, `{"targets":[]}`)
		}
	})

	w := f.request(t, http.MethodPost, "/api/poll", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("POST /api/poll = %d, want 202: %s", w.Code, w.Body.String())
	}
}
