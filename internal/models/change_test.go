package models

import (
	"testing"
	"time"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name          string
		prev          Snapshot
		cur           Target
		wantChanged   bool
		wantFollowers int64
		wantFollowing int64
	}{
		{
			name:          "both moved",
			prev:          Snapshot{TargetID: 1, Followers: 100, Following: 50},
			cur:           Target{ID: 1, Followers: 134, Following: 45},
			wantChanged:   true,
			wantFollowers: 34,
			wantFollowing: -5,
		},
		{
			name:          "only followers moved",
			prev:          Snapshot{TargetID: 1, Followers: 10, Following: 5},
			cur:           Target{ID: 1, Followers: 11, Following: 5},
			wantChanged:   true,
			wantFollowers: 1,
			wantFollowing: 0,
		},
		{
			name:        "nothing moved",
			prev:        Snapshot{TargetID: 1, Followers: 10, Following: 5},
			cur:         Target{ID: 1, Followers: 10, Following: 5},
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, changed := Diff(tt.prev, tt.cur)
			if changed != tt.wantChanged {
				t.Fatalf("Diff() changed = %v, want %v", changed, tt.wantChanged)
			}
			if !changed {
				return
			}
			if c.FollowersDiff != tt.wantFollowers {
				t.Errorf("FollowersDiff = %d, want %d", c.FollowersDiff, tt.wantFollowers)
			}
			if c.FollowingDiff != tt.wantFollowing {
				t.Errorf("FollowingDiff = %d, want %d", c.FollowingDiff, tt.wantFollowing)
			}
		})
	}
}

func TestChangeSummary(t *testing.T) {
	tests := []struct {
		name     string
		change   Change
		expected string
	}{
		{
			name:     "both diffs",
			change:   Change{FollowersDiff: 34, FollowingDiff: -5},
			expected: "Followers: +34 | Following: -5",
		},
		{
			name:     "followers only",
			change:   Change{FollowersDiff: -2},
			expected: "Followers: -2",
		},
		{
			name:     "following only",
			change:   Change{FollowingDiff: 7},
			expected: "Following: +7",
		},
		{
			name:     "no diffs",
			change:   Change{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.change.Summary()
			if got != tt.expected {
				t.Errorf("Summary() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNotificationFromChange(t *testing.T) {
	change := Change{
		TargetID:      7,
		Username:      "alice",
		Platform:      PlatformInstagram,
		OldFollowers:  100,
		NewFollowers:  134,
		OldFollowing:  50,
		NewFollowing:  45,
		FollowersDiff: 34,
		FollowingDiff: -5,
	}

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n := NotificationFromChange(change, now)

	if n.Title != "@alice Updated" {
		t.Errorf("Title = %q, want %q", n.Title, "@alice Updated")
	}
	if n.Message != "Followers: +34 | Following: -5" {
		t.Errorf("Message = %q", n.Message)
	}
	if n.Type != NotifyTypeTargetChange {
		t.Errorf("Type = %q, want %q", n.Type, NotifyTypeTargetChange)
	}
	if n.ID == "" {
		t.Error("Expected generated notification ID")
	}
	if !n.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", n.CreatedAt, now)
	}

	decoded, ok := n.Change()
	if !ok {
		t.Fatal("Expected embedded change payload")
	}
	if decoded != change {
		t.Errorf("Round-tripped change = %+v, want %+v", decoded, change)
	}
}
