package models

import "time"

// Post represents a social media post
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Content   string    `json:"content" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// PostResponse is a post joined with its author and authoritative counts
type PostResponse struct {
	ID            uint      `json:"id"`
	Content       string    `json:"content"`
	UserID        uint      `json:"user_id"`
	Username      string    `json:"username"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	Liked         bool      `json:"liked"`
	CreatedAt     time.Time `json:"created_at"`
}
