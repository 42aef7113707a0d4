package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted user-facing notification. The store keeps at
// most MaxNotifications entries, newest first; oldest entries are dropped.
type Notification struct {
	ID         string         `gorm:"primaryKey;size:64;column:id"`
	Title      string         `gorm:"size:255;not null;column:title"`
	Message    string         `gorm:"type:text;not null;column:message"`
	Type       string         `gorm:"size:32;not null;column:type"`
	TargetID   sql.NullInt64  `gorm:"column:target_id"`
	Username   sql.NullString `gorm:"size:255;column:username"`
	Platform   sql.NullString `gorm:"size:16;column:platform"`
	ChangeData sql.NullString `gorm:"type:text;column:change_data"`
	CreatedAt  time.Time      `gorm:"not null;column:created_at"`
	Read       bool           `gorm:"not null;default:false;column:read"`
}

// MarshalJSON renders the wire shape: the target-link fields appear when
// set and are omitted for notifications without a target
func (n Notification) MarshalJSON() ([]byte, error) {
	out := struct {
		ID         string          `json:"id"`
		Title      string          `json:"title"`
		Message    string          `json:"message"`
		Type       string          `json:"type"`
		TargetID   *int64          `json:"target_id,omitempty"`
		Username   *string         `json:"username,omitempty"`
		Platform   *string         `json:"platform,omitempty"`
		ChangeData json.RawMessage `json:"change_data,omitempty"`
		Timestamp  time.Time       `json:"timestamp"`
		Read       bool            `json:"read"`
	}{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Timestamp: n.CreatedAt,
		Read:      n.Read,
	}
	if n.TargetID.Valid {
		out.TargetID = &n.TargetID.Int64
	}
	if n.Username.Valid {
		out.Username = &n.Username.String
	}
	if n.Platform.Valid {
		out.Platform = &n.Platform.String
	}
	if n.ChangeData.Valid && json.Valid([]byte(n.ChangeData.String)) {
		out.ChangeData = json.RawMessage(n.ChangeData.String)
	}
	return json.Marshal(out)
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "katcha_notifications"
}

// MaxNotifications caps the notification store; the oldest entries are
// dropped once the cap is exceeded
const MaxNotifications = 100

// Notification type constants
const (
	NotifyTypeTargetChange = "target_change"
	NotifyTypeSystem       = "system"
	NotifyTypeAlert        = "alert"
)

// NotificationFromChange projects a detected change into a notification
func NotificationFromChange(c Change, at time.Time) Notification {
	payload, _ := json.Marshal(c)
	return Notification{
		ID:         uuid.NewString(),
		Title:      c.Title(),
		Message:    c.Summary(),
		Type:       NotifyTypeTargetChange,
		TargetID:   sql.NullInt64{Int64: c.TargetID, Valid: true},
		Username:   sql.NullString{String: c.Username, Valid: true},
		Platform:   sql.NullString{String: string(c.Platform), Valid: true},
		ChangeData: sql.NullString{String: string(payload), Valid: true},
		CreatedAt:  at,
	}
}

// Change decodes the embedded change payload, if any
func (n Notification) Change() (Change, bool) {
	if !n.ChangeData.Valid {
		return Change{}, false
	}
	var c Change
	if err := json.Unmarshal([]byte(n.ChangeData.String), &c); err != nil {
		return Change{}, false
	}
	return c, true
}
