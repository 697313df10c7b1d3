package usecase

import (
	"context"
	"errors"
	"strings"

	"mediconnect/internal/converter"
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotAuthor       = errors.New("only the author or an admin can delete this")
)

type CommunityUsecase interface {
	CreatePost(ctx context.Context, authorID uuid.UUID, req *dto.CreatePostRequest) (*dto.PostResponse, error)
	ListPosts(ctx context.Context, query *dto.PostListQuery) ([]dto.PostResponse, int64, error)
	GetPost(ctx context.Context, id uuid.UUID) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, userID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) error
	AddComment(ctx context.Context, authorID uuid.UUID, postID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, userID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) error
}

type communityUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	communityRepo repository.CommunityRepository
	profileRepo   repository.ProfileRepository
	publisher     repository.ChangePublisher
}

func NewCommunityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	communityRepo repository.CommunityRepository,
	profileRepo repository.ProfileRepository,
	publisher repository.ChangePublisher,
) CommunityUsecase {
	return &communityUsecase{
		db:            db,
		log:           log,
		communityRepo: communityRepo,
		profileRepo:   profileRepo,
		publisher:     publisher,
	}
}

func (u *communityUsecase) CreatePost(ctx context.Context, authorID uuid.UUID, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	post := &entity.CommunityPost{
		AuthorID: authorID,
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
	}

	if err := u.communityRepo.CreatePost(ctx, u.db, post); err != nil {
		u.log.Warnf("Failed to create post: %+v", err)
		return nil, err
	}

	if author, err := u.profileRepo.FindByID(ctx, u.db, authorID); err == nil {
		post.Author = author
	}

	response := converter.PostToResponse(post)
	publishChange(u.log, u.publisher, entity.ChangeEvent{
		Table:    "community_posts",
		Type:     entity.ChangeInsert,
		RecordID: post.ID.String(),
		Record:   response,
	})

	return response, nil
}

// ListPosts returns newest posts first, filtered by category and a
// case-insensitive search over title and content.
func (u *communityUsecase) ListPosts(ctx context.Context, query *dto.PostListQuery) ([]dto.PostResponse, int64, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	posts, total, err := u.communityRepo.FindPosts(ctx, u.db, &entity.PostFilter{
		Category: strings.ToLower(strings.TrimSpace(query.Category)),
		Search:   strings.TrimSpace(query.Search),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		u.log.Warnf("Failed to list posts: %+v", err)
		return nil, 0, err
	}

	return converter.PostsToResponses(posts), total, nil
}

func (u *communityUsecase) GetPost(ctx context.Context, id uuid.UUID) (*dto.PostResponse, error) {
	post, err := u.communityRepo.FindPostByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find post %s: %+v", id, err)
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return converter.PostToResponse(post), nil
}

func (u *communityUsecase) DeletePost(ctx context.Context, userID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) error {
	post, err := u.communityRepo.FindPostByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find post %s: %+v", id, err)
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.AuthorID != userID && !flags.IsAdmin {
		return ErrNotAuthor
	}

	if err := u.communityRepo.DeletePost(ctx, u.db, id); err != nil {
		u.log.Warnf("Failed to delete post %s: %+v", id, err)
		return err
	}

	publishChange(u.log, u.publisher, entity.ChangeEvent{
		Table:    "community_posts",
		Type:     entity.ChangeDelete,
		RecordID: id.String(),
	})
	return nil
}

func (u *communityUsecase) AddComment(ctx context.Context, authorID uuid.UUID, postID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	post, err := u.communityRepo.FindPostByID(ctx, u.db, postID)
	if err != nil {
		u.log.Warnf("Failed to find post %s: %+v", postID, err)
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comment := &entity.CommunityComment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  strings.TrimSpace(req.Content),
	}

	if err := u.communityRepo.CreateComment(ctx, u.db, comment); err != nil {
		u.log.Warnf("Failed to create comment: %+v", err)
		return nil, err
	}

	if author, err := u.profileRepo.FindByID(ctx, u.db, authorID); err == nil {
		comment.Author = author
	}

	return converter.CommentToResponse(comment), nil
}

func (u *communityUsecase) DeleteComment(ctx context.Context, userID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) error {
	comment, err := u.communityRepo.FindCommentByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find comment %s: %+v", id, err)
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.AuthorID != userID && !flags.IsAdmin {
		return ErrNotAuthor
	}

	if err := u.communityRepo.DeleteComment(ctx, u.db, id); err != nil {
		u.log.Warnf("Failed to delete comment %s: %+v", id, err)
		return err
	}
	return nil
}
