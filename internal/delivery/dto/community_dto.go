package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreatePostRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Content  string `json:"content" validate:"required,min=1,max=10000"`
	Category string `json:"category" validate:"omitempty,max=50"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

type PostListQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// Response DTOs

type AuthorResponse struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
}

type CommentResponse struct {
	ID        uuid.UUID       `json:"id"`
	PostID    uuid.UUID       `json:"post_id"`
	Content   string          `json:"content"`
	Author    *AuthorResponse `json:"author,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type PostResponse struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Category  string            `json:"category,omitempty"`
	Author    *AuthorResponse   `json:"author,omitempty"`
	Comments  []CommentResponse `json:"comments,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
