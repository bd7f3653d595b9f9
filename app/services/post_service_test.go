package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentblog/app/apperr"
	"studentblog/app/models"
	"studentblog/app/repositories/mock"
)

func newTestServices() (*mock.Store, *PostService, *CommentService) {
	store := mock.NewStore()
	return store,
		NewPostService(mock.NewPostRepository(store)),
		NewCommentService(mock.NewCommentRepository(store))
}

func validNewPost() NewPost {
	return NewPost{
		Title:       "A",
		Description: "B",
		Course:      models.CourseWorkshop,
		ImageURL:    "photo-1700000000000.jpg",
	}
}

func TestPostService(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get round trip", func(t *testing.T) {
		_, posts, _ := newTestServices()

		created, err := posts.CreatePost(ctx, validNewPost())
		require.NoError(t, err)
		assert.False(t, created.ID.IsZero())
		assert.Equal(t, "A", created.Title)
		assert.Equal(t, models.CourseWorkshop, created.Course)
		assert.NotEmpty(t, created.ImageURL)
		assert.NotNil(t, created.Comments)
		assert.Empty(t, created.Comments)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := posts.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Title, got.Title)
		assert.Equal(t, created.Description, got.Description)
		assert.Equal(t, created.Course, got.Course)
		assert.Equal(t, created.ImageURL, got.ImageURL)
	})

	t.Run("create trims text fields", func(t *testing.T) {
		_, posts, _ := newTestServices()
		in := validNewPost()
		in.Title = "  Spaced  "
		in.Description = "\tdesc\n"

		created, err := posts.CreatePost(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "Spaced", created.Title)
		assert.Equal(t, "desc", created.Description)
	})

	t.Run("invalid course never reaches storage", func(t *testing.T) {
		store, posts, _ := newTestServices()
		in := validNewPost()
		in.Course = "taller iii"

		_, err := posts.CreatePost(ctx, in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Zero(t, store.Writes)
		assert.Zero(t, store.Len())
	})

	t.Run("whitespace title is rejected", func(t *testing.T) {
		store, posts, _ := newTestServices()
		in := validNewPost()
		in.Title = "    "

		_, err := posts.CreatePost(ctx, in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Zero(t, store.Len())
	})

	t.Run("long title is rejected", func(t *testing.T) {
		_, posts, _ := newTestServices()
		in := validNewPost()
		in.Title = strings.Repeat("t", 101)

		_, err := posts.CreatePost(ctx, in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("storage failure", func(t *testing.T) {
		store, posts, _ := newTestServices()
		store.Err = errors.New("disk full")

		_, err := posts.CreatePost(ctx, validNewPost())
		assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
		assert.ErrorIs(t, err, store.Err)
	})

	t.Run("get missing post", func(t *testing.T) {
		_, posts, _ := newTestServices()
		_, err := posts.GetPost(ctx, primitive.NewObjectID())
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("partial update", func(t *testing.T) {
		_, posts, _ := newTestServices()
		created, err := posts.CreatePost(ctx, validNewPost())
		require.NoError(t, err)

		course := models.CourseTechnology
		updated, err := posts.UpdatePost(ctx, created.ID, models.PostPatch{Course: &course})
		require.NoError(t, err)
		assert.Equal(t, models.CourseTechnology, updated.Course)
		assert.Equal(t, "A", updated.Title)
		assert.Equal(t, "B", updated.Description)
	})

	t.Run("update trims and rejects blank values", func(t *testing.T) {
		_, posts, _ := newTestServices()
		created, err := posts.CreatePost(ctx, validNewPost())
		require.NoError(t, err)

		title := "  Trimmed "
		updated, err := posts.UpdatePost(ctx, created.ID, models.PostPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Trimmed", updated.Title)

		blank := "   "
		_, err = posts.UpdatePost(ctx, created.ID, models.PostPatch{Title: &blank})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("update missing post", func(t *testing.T) {
		_, posts, _ := newTestServices()
		title := "x"
		_, err := posts.UpdatePost(ctx, primitive.NewObjectID(), models.PostPatch{Title: &title})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("delete", func(t *testing.T) {
		store, posts, comments := newTestServices()
		created, err := posts.CreatePost(ctx, validNewPost())
		require.NoError(t, err)
		_, err = comments.AddComment(ctx, created.ID, "Ana", "Hola")
		require.NoError(t, err)

		require.NoError(t, posts.DeletePost(ctx, created.ID))
		assert.Zero(t, store.Len())

		_, err = comments.ListComments(ctx, created.ID)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		writes := store.Writes
		assert.NoError(t, posts.DeletePost(ctx, created.ID))
		assert.Equal(t, writes, store.Writes)
	})
}

func TestPostServiceList(t *testing.T) {
	ctx := context.Background()
	_, posts, _ := newTestServices()

	for _, c := range []models.Course{models.CourseTechnology, models.CourseWorkshop, models.CourseTechnology} {
		in := validNewPost()
		in.Course = c
		_, err := posts.CreatePost(ctx, in)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	all, err := posts.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "posts must be newest first")
	}

	tech, err := posts.ListPosts(ctx, models.CourseTechnology)
	require.NoError(t, err)
	require.Len(t, tech, 2)
	for _, p := range tech {
		assert.Equal(t, models.CourseTechnology, p.Course)
	}
}
