package services

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentblog/app/models"
	"studentblog/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

// AddComment puts a new comment at the front of the post's comments
func (s *CommentService) AddComment(ctx context.Context, postID primitive.ObjectID, name, content string) (*models.Comment, error) {
	comment := &models.Comment{
		Name:    strings.TrimSpace(name),
		Content: strings.TrimSpace(content),
	}
	comment.BeforeCreate()

	if err := s.commentRepo.Prepend(ctx, postID, comment); err != nil {
		return nil, translate(err, "failed to add comment")
	}

	log.WithFields(log.Fields{"post": postID.Hex(), "comment": comment.ID.Hex()}).Info("[comments] comment added")
	return comment, nil
}

// ListComments retrieves all comments for a post, most recent first
func (s *CommentService) ListComments(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, translate(err, "failed to get comments")
	}
	return comments, nil
}

// DeleteComment removes a single comment from a post
func (s *CommentService) DeleteComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	if err := s.commentRepo.Delete(ctx, postID, commentID); err != nil {
		return translate(err, "failed to delete comment")
	}

	log.WithFields(log.Fields{"post": postID.Hex(), "comment": commentID.Hex()}).Info("[comments] comment deleted")
	return nil
}
