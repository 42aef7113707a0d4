package models

import "time"

// StateEntry is an opaque key-value row: tokens, device id, last-checked
// timestamp. The client imposes no schema on values beyond get/set/remove.
type StateEntry struct {
	Key       string    `gorm:"primaryKey;size:64;column:key"`
	Value     string    `gorm:"type:text;not null;column:value"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for StateEntry
func (StateEntry) TableName() string {
	return "katcha_state"
}

// Well-known state keys
const (
	StateKeyAccessToken  = "access_token"
	StateKeyRefreshToken = "refresh_token"
	StateKeyDeviceID     = "device_id"
	StateKeyUser         = "user_json"
	StateKeyLastChecked  = "last_background_check"
)
