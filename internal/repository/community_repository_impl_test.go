package repository

import (
	"context"
	"testing"

	"mediconnect/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommunityRepository_FindPosts_Filters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommunityRepository()
	ctx := context.Background()
	author := uuid.New()

	posts := []*entity.CommunityPost{
		{AuthorID: author, Title: "Sleep tips", Content: "Go to bed early", Category: "wellness"},
		{AuthorID: author, Title: "Knee pain", Content: "Physio helped a lot", Category: "orthopedics"},
		{AuthorID: author, Title: "Diet", Content: "Better SLEEP after less sugar", Category: "wellness"},
	}
	for _, p := range posts {
		require.NoError(t, repo.CreatePost(ctx, db, p))
	}

	found, total, err := repo.FindPosts(ctx, db, &entity.PostFilter{Category: "wellness", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, found, 2)

	found, total, err = repo.FindPosts(ctx, db, &entity.PostFilter{Search: "sleep", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, found, 2)

	found, _, err = repo.FindPosts(ctx, db, &entity.PostFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestCommunityRepository_DeletePost_RemovesComments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommunityRepository()
	ctx := context.Background()

	post := &entity.CommunityPost{AuthorID: uuid.New(), Title: "Hello", Content: "First post"}
	require.NoError(t, repo.CreatePost(ctx, db, post))
	require.NoError(t, repo.CreateComment(ctx, db, &entity.CommunityComment{PostID: post.ID, AuthorID: uuid.New(), Content: "Welcome"}))

	withComments, err := repo.FindPostByID(ctx, db, post.ID)
	require.NoError(t, err)
	require.Len(t, withComments.Comments, 1)

	require.NoError(t, repo.DeletePost(ctx, db, post.ID))

	gone, err := repo.FindPostByID(ctx, db, post.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	var comments int64
	require.NoError(t, db.Model(&entity.CommunityComment{}).Count(&comments).Error)
	assert.Zero(t, comments)
}
