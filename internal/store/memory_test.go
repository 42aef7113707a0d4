package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/katchaapp/katcha/internal/models"
)

func TestMemoryNotificationsCap(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryNotifications()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < models.MaxNotifications+1; i++ {
		n := models.Notification{
			ID:        fmt.Sprintf("n-%d", i),
			Title:     fmt.Sprintf("title %d", i),
			Type:      models.NotifyTypeSystem,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := m.Append(ctx, n); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	list, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(list) != models.MaxNotifications {
		t.Fatalf("Expected %d notifications after cap, got %d", models.MaxNotifications, len(list))
	}

	// Newest first
	if list[0].ID != fmt.Sprintf("n-%d", models.MaxNotifications) {
		t.Errorf("Expected newest notification first, got %s", list[0].ID)
	}

	// The oldest entry was dropped
	for _, n := range list {
		if n.ID == "n-0" {
			t.Error("Expected oldest notification to be dropped")
		}
	}
}

func TestMemoryNotificationsReadOps(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryNotifications()

	now := time.Now()
	for i := 0; i < 3; i++ {
		m.Append(ctx, models.Notification{
			ID:        fmt.Sprintf("n-%d", i),
			Type:      models.NotifyTypeSystem,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
	}

	count, err := m.UnreadCount(ctx)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("UnreadCount = %d, want 3", count)
	}

	if err := m.MarkRead(ctx, "n-1"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	count, _ = m.UnreadCount(ctx)
	if count != 2 {
		t.Errorf("UnreadCount after MarkRead = %d, want 2", count)
	}

	if err := m.MarkAllRead(ctx); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	count, _ = m.UnreadCount(ctx)
	if count != 0 {
		t.Errorf("UnreadCount after MarkAllRead = %d, want 0", count)
	}

	if err := m.Delete(ctx, "n-0"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	list, _ := m.List(ctx)
	if len(list) != 2 {
		t.Errorf("Expected 2 notifications after delete, got %d", len(list))
	}

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	list, _ = m.List(ctx)
	if len(list) != 0 {
		t.Errorf("Expected empty store after clear, got %d", len(list))
	}
}

func TestMemorySnapshotsReplaceAll(t *testing.T) {
	ctx := context.Background()
	m := NewMemorySnapshots()

	m.Put(ctx, models.Snapshot{TargetID: 1, Username: "alice", Followers: 10})
	m.Put(ctx, models.Snapshot{TargetID: 2, Username: "bob", Followers: 20})

	if err := m.ReplaceAll(ctx, []models.Snapshot{
		{TargetID: 2, Username: "bob", Followers: 25},
		{TargetID: 3, Username: "carol", Followers: 5},
	}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	all, err := m.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(all))
	}
	if all[0].TargetID != 2 || all[0].Followers != 25 {
		t.Errorf("Unexpected first snapshot: %+v", all[0])
	}
	if all[1].TargetID != 3 {
		t.Errorf("Unexpected second snapshot: %+v", all[1])
	}
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	state := NewMemoryState()
	tokens := NewTokenStore(state, "key", "secret")

	apiKey, apiSecret, err := tokens.Credentials(ctx)
	if err != nil {
		t.Fatalf("Credentials failed: %v", err)
	}
	if apiKey != "key" || apiSecret != "secret" {
		t.Errorf("Credentials = (%q, %q)", apiKey, apiSecret)
	}

	// No tokens yet
	access, _ := tokens.AccessToken(ctx)
	if access != "" {
		t.Errorf("Expected empty access token, got %q", access)
	}

	if err := tokens.SetTokens(ctx, "acc-1", "ref-1"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}

	// Empty refresh token keeps the previous one
	if err := tokens.SetTokens(ctx, "acc-2", ""); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	access, _ = tokens.AccessToken(ctx)
	refresh, _ := tokens.RefreshToken(ctx)
	if access != "acc-2" {
		t.Errorf("AccessToken = %q, want acc-2", access)
	}
	if refresh != "ref-1" {
		t.Errorf("RefreshToken = %q, want ref-1 (kept)", refresh)
	}

	if err := tokens.ClearTokens(ctx); err != nil {
		t.Fatalf("ClearTokens failed: %v", err)
	}
	access, _ = tokens.AccessToken(ctx)
	refresh, _ = tokens.RefreshToken(ctx)
	if access != "" || refresh != "" {
		t.Errorf("Expected cleared tokens, got (%q, %q)", access, refresh)
	}
}

func TestTokenStoreDeviceID(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokenStore(NewMemoryState(), "", "")

	first, err := tokens.DeviceID(ctx)
	if err != nil {
		t.Fatalf("DeviceID failed: %v", err)
	}
	if first == "" {
		t.Fatal("Expected generated device id")
	}

	second, err := tokens.DeviceID(ctx)
	if err != nil {
		t.Fatalf("DeviceID failed: %v", err)
	}
	if second != first {
		t.Errorf("Expected stable device id, got %q then %q", first, second)
	}
}
