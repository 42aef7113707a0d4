package models

import "time"

// Snapshot is the last-recorded metrics for a target, used as the diff
// baseline by the change detector. Exactly one snapshot exists per tracked
// target; it is overwritten on every successful poll cycle.
type Snapshot struct {
	TargetID  int64     `gorm:"primaryKey;column:target_id" json:"id"`
	Username  string    `gorm:"size:255;not null;column:username" json:"username"`
	Platform  Platform  `gorm:"size:16;not null;column:platform" json:"platform"`
	Followers int64     `gorm:"not null;column:followers" json:"followers"`
	Following int64     `gorm:"not null;column:following" json:"following"`
	TakenAt   time.Time `gorm:"not null;column:taken_at" json:"timestamp"`
}

// TableName specifies the table name for Snapshot
func (Snapshot) TableName() string {
	return "katcha_snapshots"
}

// SnapshotOf projects a fetched target into its snapshot form
func SnapshotOf(t Target, at time.Time) Snapshot {
	return Snapshot{
		TargetID:  t.ID,
		Username:  t.Username,
		Platform:  t.Platform,
		Followers: t.Followers,
		Following: t.Following,
		TakenAt:   at,
	}
}
