package models

import "time"

// Follow represents a directed follower -> followee edge
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowRequest defines the request body for toggling a follow edge
type FollowRequest struct {
	Username string `json:"username" validate:"required"`
}
