package repository

import (
	"context"

	"mediconnect/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunityRepository interface {
	CreatePost(ctx context.Context, db *gorm.DB, post *entity.CommunityPost) error
	FindPosts(ctx context.Context, db *gorm.DB, filter *entity.PostFilter) ([]entity.CommunityPost, int64, error)
	FindPostByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.CommunityPost, error)
	DeletePost(ctx context.Context, db *gorm.DB, id uuid.UUID) error
	CountPosts(ctx context.Context, db *gorm.DB) (int64, error)

	CreateComment(ctx context.Context, db *gorm.DB, comment *entity.CommunityComment) error
	FindCommentByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.CommunityComment, error)
	DeleteComment(ctx context.Context, db *gorm.DB, id uuid.UUID) error
}
