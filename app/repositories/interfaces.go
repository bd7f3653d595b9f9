package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentblog/app/models"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	// Update applies the patch and returns the stored post.
	Update(ctx context.Context, id primitive.ObjectID, patch models.PostPatch) (*models.Post, error)
	// Delete removes the post and its comments. Deleting a missing post is not an error.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CommentRepository defines the interface for access to the comments embedded in a post
type CommentRepository interface {
	// Prepend stores the comment at the front of the post's comment list.
	Prepend(ctx context.Context, postID primitive.ObjectID, comment *models.Comment) error
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	Delete(ctx context.Context, postID, commentID primitive.ObjectID) error
}
