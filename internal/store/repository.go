package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/katchaapp/katcha/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SnapshotRepository provides snapshot persistence over Postgres
type SnapshotRepository struct {
	*Repository
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(repo *Repository) *SnapshotRepository {
	return &SnapshotRepository{Repository: repo}
}

// All returns every stored snapshot
func (r *SnapshotRepository) All(ctx context.Context) ([]models.Snapshot, error) {
	var snapshots []models.Snapshot
	if err := r.db.WithContext(ctx).Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Put creates or overwrites the snapshot for one target
func (r *SnapshotRepository) Put(ctx context.Context, s models.Snapshot) error {
	return r.db.WithContext(ctx).Save(&s).Error
}

// ReplaceAll atomically replaces the whole snapshot set
func (r *SnapshotRepository) ReplaceAll(ctx context.Context, snapshots []models.Snapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Snapshot{}).Error; err != nil {
			return err
		}
		if len(snapshots) == 0 {
			return nil
		}
		return tx.Create(&snapshots).Error
	})
}

// Delete removes the snapshot for a target
func (r *SnapshotRepository) Delete(ctx context.Context, targetID int64) error {
	return r.db.WithContext(ctx).Delete(&models.Snapshot{}, "target_id = ?", targetID).Error
}

// NotificationRepository provides notification persistence over Postgres
type NotificationRepository struct {
	*Repository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(repo *Repository) *NotificationRepository {
	return &NotificationRepository{Repository: repo}
}

// List returns all notifications, newest first
func (r *NotificationRepository) List(ctx context.Context) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// Append stores a notification and prunes entries beyond the cap,
// oldest first
func (r *NotificationRepository) Append(ctx context.Context, n models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&n).Error; err != nil {
			return err
		}
		keep := tx.Model(&models.Notification{}).
			Select("id").
			Order("created_at DESC").
			Limit(models.MaxNotifications)
		return tx.Where("id NOT IN (?)", keep).Delete(&models.Notification{}).Error
	})
}

// MarkRead marks one notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks every notification as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("read = ?", false).Update("read", true).Error
}

// Delete removes one notification
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Notification{}, "id = ?", id).Error
}

// Clear removes every notification
func (r *NotificationRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Notification{}).Error
}

// UnreadCount returns the number of unread notifications
func (r *NotificationRepository) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("read = ?", false).Count(&count).Error
	return count, err
}

// StateRepository provides key-value state persistence over Postgres
type StateRepository struct {
	*Repository
}

// NewStateRepository creates a new state repository
func NewStateRepository(repo *Repository) *StateRepository {
	return &StateRepository{Repository: repo}
}

// Get returns the value for key, or "" when absent
func (r *StateRepository) Get(ctx context.Context, key string) (string, error) {
	var entry models.StateEntry
	if err := r.db.WithContext(ctx).First(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return entry.Value, nil
}

// Set stores a value under key
func (r *StateRepository) Set(ctx context.Context, key, value string) error {
	entry := models.StateEntry{Key: key, Value: value}
	return r.db.WithContext(ctx).Save(&entry).Error
}

// Remove deletes a key
func (r *StateRepository) Remove(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&models.StateEntry{}, "key = ?", key).Error
}
