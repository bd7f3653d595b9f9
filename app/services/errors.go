package services

import (
	"errors"

	"studentblog/app/apperr"
	"studentblog/app/repositories"
)

// translate turns a repository error into the error kind the transport understands.
func translate(err error, action string) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound("post not found")
	case errors.Is(err, repositories.ErrCommentNotFound):
		return apperr.NotFound("comment not found")
	case errors.Is(err, repositories.ErrInvalidEntity):
		return &apperr.Error{Kind: apperr.KindValidation, Message: "rejected by storage validation", Err: err}
	default:
		return apperr.Storage(action, err)
	}
}
