package models

import (
	"fmt"
	"strings"
)

// Change is a detected difference between a prior snapshot and a freshly
// fetched target. It is ephemeral: computed during a poll cycle and
// projected into a Notification, never stored as such.
type Change struct {
	TargetID      int64    `json:"target_id"`
	Username      string   `json:"username"`
	Platform      Platform `json:"platform"`
	OldFollowers  int64    `json:"old_followers"`
	NewFollowers  int64    `json:"new_followers"`
	OldFollowing  int64    `json:"old_following"`
	NewFollowing  int64    `json:"new_following"`
	FollowersDiff int64    `json:"followers_diff"`
	FollowingDiff int64    `json:"following_diff"`
}

// Diff computes the change between a snapshot and the current target.
// The second return is false when nothing moved.
func Diff(prev Snapshot, cur Target) (Change, bool) {
	c := Change{
		TargetID:      cur.ID,
		Username:      cur.Username,
		Platform:      cur.Platform,
		OldFollowers:  prev.Followers,
		NewFollowers:  cur.Followers,
		OldFollowing:  prev.Following,
		NewFollowing:  cur.Following,
		FollowersDiff: cur.Followers - prev.Followers,
		FollowingDiff: cur.Following - prev.Following,
	}
	return c, c.FollowersDiff != 0 || c.FollowingDiff != 0
}

// Summary renders the non-zero diffs as "Followers: +N | Following: -N"
func (c Change) Summary() string {
	var parts []string
	if c.FollowersDiff != 0 {
		parts = append(parts, fmt.Sprintf("Followers: %+d", c.FollowersDiff))
	}
	if c.FollowingDiff != 0 {
		parts = append(parts, fmt.Sprintf("Following: %+d", c.FollowingDiff))
	}
	return strings.Join(parts, " | ")
}

// Title renders the notification title for this change
func (c Change) Title() string {
	return fmt.Sprintf("@%s Updated", c.Username)
}
