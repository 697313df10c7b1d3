package handler

import (
	"net/http"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/delivery/http/middleware"
	"mediconnect/internal/usecase"
	"mediconnect/pkg/response"
	"mediconnect/pkg/validator"
)

type CommunityHandler struct {
	communityUsecase usecase.CommunityUsecase
	validator        *validator.CustomValidator
}

func NewCommunityHandler(communityUsecase usecase.CommunityUsecase, validator *validator.CustomValidator) *CommunityHandler {
	return &CommunityHandler{
		communityUsecase: communityUsecase,
		validator:        validator,
	}
}

// CreatePost handles creating a forum post
// @Summary Create post
// @Tags Community
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePostRequest true "Create Post Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /community/posts [post]
func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	post, err := h.communityUsecase.CreatePost(r.Context(), userID, &req)
	if err != nil {
		response.InternalServerError(w, "Failed to create post")
		return
	}

	response.Success(w, http.StatusCreated, "Post created successfully", post)
}

// ListPosts handles the forum listing
// @Summary List posts
// @Tags Community
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Search in title and content"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Router /community/posts [get]
func (h *CommunityHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	posts, total, err := h.communityUsecase.ListPosts(r.Context(), &dto.PostListQuery{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		response.InternalServerError(w, "Failed to get posts")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Posts retrieved successfully", posts, response.NewMeta(page, limit, total))
}

// GetPost handles getting a post with its comments
// @Summary Get post
// @Tags Community
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /community/posts/{id} [get]
func (h *CommunityHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "post")
	if !ok {
		return
	}

	post, err := h.communityUsecase.GetPost(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to get post")
		return
	}

	response.Success(w, http.StatusOK, "Post retrieved successfully", post)
}

// DeletePost handles deleting a post (author or admin)
// @Summary Delete post
// @Tags Community
// @Security BearerAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /community/posts/{id} [delete]
func (h *CommunityHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "post")
	if !ok {
		return
	}

	if err := h.communityUsecase.DeletePost(r.Context(), userID, middleware.GetRoleFlagsFromContext(r.Context()), id); err != nil {
		h.writeError(w, err, "Failed to delete post")
		return
	}

	response.Success(w, http.StatusOK, "Post deleted successfully", nil)
}

// AddComment handles commenting on a post
// @Summary Add comment
// @Tags Community
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body dto.CreateCommentRequest true "Create Comment Request"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /community/posts/{id}/comments [post]
func (h *CommunityHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id", "post")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	comment, err := h.communityUsecase.AddComment(r.Context(), userID, postID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to add comment")
		return
	}

	response.Success(w, http.StatusCreated, "Comment added successfully", comment)
}

// DeleteComment handles deleting a comment (author or admin)
// @Summary Delete comment
// @Tags Community
// @Security BearerAuth
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /community/comments/{id} [delete]
func (h *CommunityHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "comment")
	if !ok {
		return
	}

	if err := h.communityUsecase.DeleteComment(r.Context(), userID, middleware.GetRoleFlagsFromContext(r.Context()), id); err != nil {
		h.writeError(w, err, "Failed to delete comment")
		return
	}

	response.Success(w, http.StatusOK, "Comment deleted successfully", nil)
}

func (h *CommunityHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrPostNotFound:
		response.NotFound(w, "Post not found")
	case usecase.ErrCommentNotFound:
		response.NotFound(w, "Comment not found")
	case usecase.ErrNotAuthor:
		response.Forbidden(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
