package services

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentblog/app/models"
	"studentblog/app/repositories"
)

// PostService handles business logic for blog posts
type PostService struct {
	postRepo repositories.PostRepository
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// NewPost carries the fields of a post being created.
type NewPost struct {
	Title       string
	Description string
	Course      models.Course
	ImageURL    string
}

// CreatePost stores a new post with an empty comment list
func (s *PostService) CreatePost(ctx context.Context, in NewPost) (*models.Post, error) {
	post := &models.Post{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Course:      in.Course,
		ImageURL:    in.ImageURL,
	}
	post.BeforeCreate()

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, translate(err, "failed to create post")
	}

	log.WithFields(log.Fields{"id": post.ID.Hex(), "course": post.Course}).Info("[posts] post created")
	return post, nil
}

// GetPost retrieves a post by ID with its comments
func (s *PostService) GetPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to get post")
	}
	return post, nil
}

// ListPosts retrieves posts newest first. An empty course lists every post.
func (s *PostService) ListPosts(ctx context.Context, course models.Course) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx, models.PostFilter{Course: course})
	if err != nil {
		return nil, translate(err, "failed to list posts")
	}
	return posts, nil
}

// UpdatePost changes only the fields set in the patch
func (s *PostService) UpdatePost(ctx context.Context, id primitive.ObjectID, patch models.PostPatch) (*models.Post, error) {
	patch.Title = trimmed(patch.Title)
	patch.Description = trimmed(patch.Description)

	post, err := s.postRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err, "failed to update post")
	}

	log.WithField("id", id.Hex()).Info("[posts] post updated")
	return post, nil
}

// DeletePost deletes a post and all its comments
func (s *PostService) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return translate(err, "failed to delete post")
	}

	log.WithField("id", id.Hex()).Info("[posts] post deleted")
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
