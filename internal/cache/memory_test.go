package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Errorf("Expected ErrMiss for missing key, got: %v", err)
	}

	if err := m.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != "v" {
		t.Errorf("Get = %q, want %q", val, "v")
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Expected ErrMiss after delete, got: %v", err)
	}
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })

	if err := m.Set(ctx, "k", "v", 5*time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Just before expiry the value is still served
	now = now.Add(5 * time.Minute)
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Errorf("Expected hit at exactly TTL, got: %v", err)
	}

	// Past expiry the entry is gone
	now = now.Add(time.Second)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Expected ErrMiss after TTL, got: %v", err)
	}
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })

	if err := m.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	now = now.Add(1000 * time.Hour)
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Errorf("Expected zero-TTL entry to persist, got: %v", err)
	}
}

func TestNamespaceKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"simple key", "targets", "katcha:targets"},
		{"key with colon", "targets:list", "katcha:targets:list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := namespaceKey(tt.key)
			if got != tt.expected {
				t.Errorf("namespaceKey(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}
