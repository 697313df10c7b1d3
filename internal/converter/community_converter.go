package converter

import (
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
)

func PostToResponse(post *entity.CommunityPost) *dto.PostResponse {
	if post == nil {
		return nil
	}

	response := &dto.PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Category:  post.Category,
		Author:    ProfileToAuthor(post.Author),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}

	for i := range post.Comments {
		response.Comments = append(response.Comments, *CommentToResponse(&post.Comments[i]))
	}

	return response
}

func PostsToResponses(posts []entity.CommunityPost) []dto.PostResponse {
	responses := make([]dto.PostResponse, len(posts))
	for i := range posts {
		responses[i] = *PostToResponse(&posts[i])
	}
	return responses
}

func CommentToResponse(comment *entity.CommunityComment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		Author:    ProfileToAuthor(comment.Author),
		CreatedAt: comment.CreatedAt,
	}
}
