package store

import (
	"context"
	"sort"
	"sync"

	"github.com/katchaapp/katcha/internal/models"
)

// MemorySnapshots is an in-memory SnapshotStore
type MemorySnapshots struct {
	mu        sync.Mutex
	snapshots map[int64]models.Snapshot
}

// NewMemorySnapshots creates an in-memory snapshot store
func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{snapshots: make(map[int64]models.Snapshot)}
}

// All returns every stored snapshot
func (m *MemorySnapshots) All(_ context.Context) ([]models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Snapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetID < out[j].TargetID })
	return out, nil
}

// Put creates or overwrites the snapshot for one target
func (m *MemorySnapshots) Put(_ context.Context, s models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[s.TargetID] = s
	return nil
}

// ReplaceAll replaces the whole snapshot set
func (m *MemorySnapshots) ReplaceAll(_ context.Context, snapshots []models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots = make(map[int64]models.Snapshot, len(snapshots))
	for _, s := range snapshots {
		m.snapshots[s.TargetID] = s
	}
	return nil
}

// Delete removes the snapshot for a target
func (m *MemorySnapshots) Delete(_ context.Context, targetID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.snapshots, targetID)
	return nil
}

// MemoryNotifications is an in-memory NotificationStore
type MemoryNotifications struct {
	mu            sync.Mutex
	notifications []models.Notification // newest first
}

// NewMemoryNotifications creates an in-memory notification store
func NewMemoryNotifications() *MemoryNotifications {
	return &MemoryNotifications{}
}

// List returns all notifications, newest first
func (m *MemoryNotifications) List(_ context.Context) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Notification, len(m.notifications))
	copy(out, m.notifications)
	return out, nil
}

// Append stores a notification and prunes entries beyond the cap
func (m *MemoryNotifications) Append(_ context.Context, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notifications = append([]models.Notification{n}, m.notifications...)
	sort.SliceStable(m.notifications, func(i, j int) bool {
		return m.notifications[i].CreatedAt.After(m.notifications[j].CreatedAt)
	})
	if len(m.notifications) > models.MaxNotifications {
		m.notifications = m.notifications[:models.MaxNotifications]
	}
	return nil
}

// MarkRead marks one notification as read
func (m *MemoryNotifications) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].Read = true
			return nil
		}
	}
	return nil
}

// MarkAllRead marks every notification as read
func (m *MemoryNotifications) MarkAllRead(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.notifications {
		m.notifications[i].Read = true
	}
	return nil
}

// Delete removes one notification
func (m *MemoryNotifications) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.notifications[:0]
	for _, n := range m.notifications {
		if n.ID != id {
			out = append(out, n)
		}
	}
	m.notifications = out
	return nil
}

// Clear removes every notification
func (m *MemoryNotifications) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notifications = nil
	return nil
}

// UnreadCount returns the number of unread notifications
func (m *MemoryNotifications) UnreadCount(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, n := range m.notifications {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MemoryState is an in-memory StateStore
type MemoryState struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryState creates an in-memory state store
func NewMemoryState() *MemoryState {
	return &MemoryState{entries: make(map[string]string)}
}

// Get returns the value for key, or "" when absent
func (m *MemoryState) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.entries[key], nil
}

// Set stores a value under key
func (m *MemoryState) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
	return nil
}

// Remove deletes a key
func (m *MemoryState) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
