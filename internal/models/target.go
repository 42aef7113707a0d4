package models

// Platform identifies the social network a target lives on
type Platform string

// Supported platforms
const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// Valid reports whether the platform is one the backend supports
func (p Platform) Valid() bool {
	return p == PlatformInstagram || p == PlatformTikTok
}

// Target is the assembled view of a tracked social account: the backend's
// target record merged with the latest social stats. It is owned by the
// backend and never persisted locally; snapshots are the local projection.
type Target struct {
	ID            int64    `json:"id"`
	Platform      Platform `json:"platform"`
	Username      string   `json:"username"`
	Followers     int64    `json:"followers"`
	Following     int64    `json:"following"`
	ProfilePicURL string   `json:"profile_pic_url,omitempty"`
	FullName      string   `json:"full_name,omitempty"`
	IsVerified    bool     `json:"is_verified"`
	LastChecked   string   `json:"last_checked,omitempty"`
	IsActive      int      `json:"is_active"`
	UserID        int64    `json:"user_id"`
	AddedAt       string   `json:"added_at,omitempty"`
}
