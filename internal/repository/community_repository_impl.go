package repository

import (
	"context"
	"errors"
	"strings"

	"mediconnect/internal/domain/entity"
	domainRepo "mediconnect/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type communityRepository struct{}

func NewCommunityRepository() domainRepo.CommunityRepository {
	return &communityRepository{}
}

func (r *communityRepository) CreatePost(ctx context.Context, db *gorm.DB, post *entity.CommunityPost) error {
	return db.WithContext(ctx).Create(post).Error
}

func (r *communityRepository) FindPosts(ctx context.Context, db *gorm.DB, filter *entity.PostFilter) ([]entity.CommunityPost, int64, error) {
	var posts []entity.CommunityPost
	var total int64

	query := db.WithContext(ctx).Model(&entity.CommunityPost{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Author").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *communityRepository) FindPostByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.CommunityPost, error) {
	var post entity.CommunityPost
	err := db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.Author").
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// DeletePost removes the post and its comments.
func (r *communityRepository) DeletePost(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&entity.CommunityComment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.CommunityPost{}).Error
	})
}

func (r *communityRepository) CountPosts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&entity.CommunityPost{}).Count(&total).Error
	return total, err
}

func (r *communityRepository) CreateComment(ctx context.Context, db *gorm.DB, comment *entity.CommunityComment) error {
	return db.WithContext(ctx).Create(comment).Error
}

func (r *communityRepository) FindCommentByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.CommunityComment, error) {
	var comment entity.CommunityComment
	err := db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

func (r *communityRepository) DeleteComment(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.CommunityComment{}).Error
}
