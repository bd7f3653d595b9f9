package controllers

import (
	"net/http"

	"github.com/dgraph-io/badger/v4"

	"studentblog/app/repositories"
	"studentblog/app/services"
	"studentblog/app/validation"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// NewCommentControllerWithDB creates a new CommentController backed by a badger database
func NewCommentControllerWithDB(db *badger.DB) *CommentController {
	return NewCommentController(services.NewCommentService(repositories.NewBadgerCommentRepository(db)))
}

// Index lists the comments of a post, most recent first
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request, in *validation.Input) error {
	postID, err := objectID(in, "id")
	if err != nil {
		return err
	}
	comments, err := cc.commentService.ListComments(r.Context(), postID)
	if err != nil {
		return err
	}
	sendJSON(w, http.StatusOK, "comments", comments)
	return nil
}

// Create adds a comment to a post
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request, in *validation.Input) error {
	postID, err := objectID(in, "id")
	if err != nil {
		return err
	}
	comment, err := cc.commentService.AddComment(r.Context(), postID, in.Body["name"], in.Body["content"])
	if err != nil {
		return err
	}
	sendJSON(w, http.StatusCreated, "comment", comment)
	return nil
}

// Delete removes one comment, identified by its id, from a post
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request, in *validation.Input) error {
	postID, err := objectID(in, "id")
	if err != nil {
		return err
	}
	commentID, err := objectID(in, "commentId")
	if err != nil {
		return err
	}
	if err := cc.commentService.DeleteComment(r.Context(), postID, commentID); err != nil {
		return err
	}
	sendJSON(w, http.StatusOK, "message", "comment deleted")
	return nil
}
