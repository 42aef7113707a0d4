package targets

import (
	"encoding/json"
	"fmt"

	"github.com/katchaapp/katcha/internal/models"
)

// socialStats is the platform-independent view of an account's metrics
type socialStats struct {
	Followers     int64
	Following     int64
	ProfilePicURL string
	FullName      string
	IsVerified    bool
}

// instagramUserInfo matches the flat shape the Instagram userinfo endpoint
// returns. Some responses wrap the same fields under "user".
type instagramUserInfo struct {
	FollowerCount   int64  `json:"follower_count"`
	FollowingCount  int64  `json:"following_count"`
	ProfilePicURLHD string `json:"profile_pic_url_hd"`
	ProfilePicURL   string `json:"profile_pic_url"`
	FullName        string `json:"full_name"`
	IsVerified      bool   `json:"is_verified"`

	User *instagramUserInfo `json:"user"`
}

// tiktokUserInfo matches TikTok's nested shape: counters under
// userInfo.stats, profile fields under userInfo.user
type tiktokUserInfo struct {
	UserInfo struct {
		Stats struct {
			FollowerCount  int64 `json:"followerCount"`
			FollowingCount int64 `json:"followingCount"`
		} `json:"stats"`
		User struct {
			AvatarLarger string `json:"avatarLarger"`
			Nickname     string `json:"nickname"`
			Verified     bool   `json:"verified"`
		} `json:"user"`
	} `json:"userInfo"`

	// flat fallback seen on some responses
	FollowerCount  int64 `json:"followerCount"`
	FollowingCount int64 `json:"followingCount"`
}

// followList matches the followers/following endpoints: an explicit total
// plus the member list, sometimes wrapped under "data"
type followList struct {
	Total     int64             `json:"total"`
	Followers []json.RawMessage `json:"followers"`
	Following []json.RawMessage `json:"following"`
	Data      *followList       `json:"data"`
}

// followTotal extracts the count from a followers/following payload: the
// explicit total when present, the list length otherwise
func followTotal(data json.RawMessage) int64 {
	var list followList
	if err := json.Unmarshal(data, &list); err != nil {
		return 0
	}
	return list.total()
}

func (l followList) total() int64 {
	if l.Data != nil {
		return l.Data.total()
	}
	if l.Total != 0 {
		return l.Total
	}
	if n := len(l.Followers); n != 0 {
		return int64(n)
	}
	return int64(len(l.Following))
}

// normalizeStats maps a platform-specific userinfo payload onto the common
// stats shape
func normalizeStats(platform models.Platform, data json.RawMessage) (socialStats, error) {
	switch platform {
	case models.PlatformInstagram:
		return normalizeInstagram(data)
	case models.PlatformTikTok:
		return normalizeTikTok(data)
	default:
		return socialStats{}, fmt.Errorf("unsupported platform %q", platform)
	}
}

func normalizeInstagram(data json.RawMessage) (socialStats, error) {
	var info instagramUserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return socialStats{}, fmt.Errorf("failed to parse instagram userinfo: %w", err)
	}
	if info.User != nil && info.FollowerCount == 0 && info.FullName == "" {
		info = *info.User
	}
	pic := info.ProfilePicURLHD
	if pic == "" {
		pic = info.ProfilePicURL
	}
	return socialStats{
		Followers:     info.FollowerCount,
		Following:     info.FollowingCount,
		ProfilePicURL: pic,
		FullName:      info.FullName,
		IsVerified:    info.IsVerified,
	}, nil
}

func normalizeTikTok(data json.RawMessage) (socialStats, error) {
	var info tiktokUserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return socialStats{}, fmt.Errorf("failed to parse tiktok userinfo: %w", err)
	}
	followers := info.UserInfo.Stats.FollowerCount
	following := info.UserInfo.Stats.FollowingCount
	if followers == 0 && following == 0 {
		followers = info.FollowerCount
		following = info.FollowingCount
	}
	return socialStats{
		Followers:     followers,
		Following:     following,
		ProfilePicURL: info.UserInfo.User.AvatarLarger,
		FullName:      info.UserInfo.User.Nickname,
		IsVerified:    info.UserInfo.User.Verified,
	}, nil
}
