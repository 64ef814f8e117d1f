package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James9446/patricia-james-sub001/internal/models"
)

func createTestPhoto(t *testing.T, db *DB, owner *models.User, key string, categoryID *int64) *models.Photo {
	t.Helper()
	p, err := CreatePhoto(context.Background(), db, &models.Photo{
		UserID:           owner.ID,
		CategoryID:       categoryID,
		StorageKey:       key,
		OriginalFilename: key + ".jpg",
		ContentType:      "image/jpeg",
		SizeBytes:        1024,
		Width:            640,
		Height:           480,
		Caption:          "caption " + key,
	})
	require.NoError(t, err)
	return p
}

func TestPhotosAndLikes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestGuest(t, db, "Photo Owner", false)
	viewer := createTestGuest(t, db, "Photo Viewer", false)
	ceremony, err := GetCategoryBySlug(ctx, db, "ceremony")
	require.NoError(t, err)

	first := createTestPhoto(t, db, owner, "first", &ceremony.ID)
	second := createTestPhoto(t, db, owner, "second", nil)

	assert.Equal(t, "Photo Owner", first.UploaderName)
	require.NotNil(t, first.CategorySlug)
	assert.Equal(t, "ceremony", *first.CategorySlug)
	assert.Nil(t, second.CategorySlug)

	t.Run("list and filter", func(t *testing.T) {
		all, err := ListPhotos(ctx, db, PhotoFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, second.ID, all[0].ID)

		filtered, err := ListPhotos(ctx, db, PhotoFilter{CategorySlug: "ceremony", Limit: 10})
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, first.ID, filtered[0].ID)

		paged, err := ListPhotos(ctx, db, PhotoFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, paged, 1)
		assert.Equal(t, first.ID, paged[0].ID)
	})

	t.Run("likes are idempotent", func(t *testing.T) {
		require.NoError(t, LikePhoto(ctx, db, first.ID, viewer.ID))
		require.NoError(t, LikePhoto(ctx, db, first.ID, viewer.ID))
		require.NoError(t, LikePhoto(ctx, db, first.ID, owner.ID))

		p, err := GetPhoto(ctx, db, first.ID, viewer.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, p.LikeCount)
		assert.True(t, p.LikedByMe)

		require.NoError(t, UnlikePhoto(ctx, db, first.ID, viewer.ID))
		require.NoError(t, UnlikePhoto(ctx, db, first.ID, viewer.ID))

		p, err = GetPhoto(ctx, db, first.ID, viewer.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, p.LikeCount)
		assert.False(t, p.LikedByMe)
	})

	t.Run("update", func(t *testing.T) {
		require.NoError(t, UpdatePhoto(ctx, db, second.ID, "new caption", &ceremony.ID))
		p, err := GetPhoto(ctx, db, second.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, "new caption", p.Caption)
		require.NotNil(t, p.CategoryID)
		assert.Equal(t, ceremony.ID, *p.CategoryID)
	})

	t.Run("soft delete hides the photo", func(t *testing.T) {
		require.NoError(t, SoftDeletePhoto(ctx, db, second.ID))
		_, err := GetPhoto(ctx, db, second.ID, 0)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, SoftDeletePhoto(ctx, db, second.ID), ErrNotFound)

		all, err := ListPhotos(ctx, db, PhotoFilter{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestGuest(t, db, "Comment Owner", false)
	photo := createTestPhoto(t, db, owner, "commented", nil)

	c1, err := CreateComment(ctx, db, photo.ID, owner.ID, "Lovely!")
	require.NoError(t, err)
	assert.Equal(t, "Comment Owner", c1.UserName)
	_, err = CreateComment(ctx, db, photo.ID, owner.ID, "Second")
	require.NoError(t, err)

	comments, err := ListComments(ctx, db, photo.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Lovely!", comments[0].Body)

	p, err := GetPhoto(ctx, db, photo.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CommentCount)

	require.NoError(t, UpdateComment(ctx, db, c1.ID, "Edited"))
	c1, err = GetComment(ctx, db, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", c1.Body)

	require.NoError(t, DeleteComment(ctx, db, c1.ID))
	assert.ErrorIs(t, DeleteComment(ctx, db, c1.ID), ErrNotFound)
	_, err = GetComment(ctx, db, c1.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
