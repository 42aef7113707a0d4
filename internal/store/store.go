// Package store persists the service's local state: metric snapshots, the
// notification feed, and opaque key-value entries (tokens, device id, last
// poll timestamp). A Postgres implementation backs production; an in-memory
// implementation backs tests and storage-less runs.
package store

import (
	"context"

	"github.com/katchaapp/katcha/internal/models"
)

// SnapshotStore persists the per-target diff baselines
type SnapshotStore interface {
	// All returns every stored snapshot
	All(ctx context.Context) ([]models.Snapshot, error)
	// Put creates or overwrites the snapshot for one target
	Put(ctx context.Context, s models.Snapshot) error
	// ReplaceAll atomically replaces the whole snapshot set
	ReplaceAll(ctx context.Context, snapshots []models.Snapshot) error
	// Delete removes the snapshot for a target
	Delete(ctx context.Context, targetID int64) error
}

// NotificationStore persists the notification feed, newest first, capped at
// models.MaxNotifications entries
type NotificationStore interface {
	List(ctx context.Context) ([]models.Notification, error)
	Append(ctx context.Context, n models.Notification) error
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	UnreadCount(ctx context.Context) (int64, error)
}

// StateStore is a flat key-value store for opaque strings. Get returns ""
// with a nil error when the key is absent.
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
