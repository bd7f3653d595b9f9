package repositories

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentblog/app/models"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB.
// Comments live inside the post document, so every write rewrites the post
// within one transaction while holding the post's writer lock.
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Prepend adds a comment at the front of the post's comments
func (r *BadgerCommentRepository) Prepend(ctx context.Context, postID primitive.ObjectID, comment *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return updatePost(r.db, postID, func(txn *badger.Txn) error {
		post, err := loadPost(txn, postID)
		if err != nil {
			return err
		}
		if err := post.AddComment(comment); err != nil {
			return err
		}
		post.UpdatedAt = time.Now().UTC()
		return savePost(txn, post)
	})
}

// ListByPost retrieves the comments of a post, most recent first
func (r *BadgerCommentRepository) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		post, err := loadPost(txn, postID)
		if err != nil {
			return err
		}
		comments = post.Comments
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes one comment from a post
func (r *BadgerCommentRepository) Delete(ctx context.Context, postID, commentID primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return updatePost(r.db, postID, func(txn *badger.Txn) error {
		post, err := loadPost(txn, postID)
		if err != nil {
			return err
		}
		if err := post.RemoveComment(commentID); err != nil {
			return err
		}
		post.UpdatedAt = time.Now().UTC()
		return savePost(txn, post)
	})
}
