package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrCommentNotFound is returned when a post has no comment with the given id.
var ErrCommentNotFound = errors.New("comment not found")

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// AddComment puts a comment at the front of the post's comments,
// keeping the most recent comment first.
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	p.Comments = append([]Comment{*comment}, p.Comments...)
	return nil
}

// RemoveComment removes a comment from the post
func (p *Post) RemoveComment(commentID primitive.ObjectID) error {
	for i, comment := range p.Comments {
		if comment.ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return ErrCommentNotFound
}

// Apply copies the fields set in the patch onto the post.
func (pp PostPatch) Apply(p *Post) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Course != nil {
		p.Course = *pp.Course
	}
}

// IsEmpty reports whether the patch changes nothing.
func (pp PostPatch) IsEmpty() bool {
	return pp.Title == nil && pp.Description == nil && pp.Course == nil
}

// Validate checks the fields the patch sets against the same rules as a full post.
func (pp PostPatch) Validate() error {
	if pp.Title != nil {
		if err := validate.Var(*pp.Title, "required,max=100"); err != nil {
			return fmt.Errorf("title: %w", err)
		}
	}
	if pp.Description != nil {
		if err := validate.Var(*pp.Description, "required"); err != nil {
			return fmt.Errorf("description: %w", err)
		}
	}
	if pp.Course != nil {
		if err := validate.Var(string(*pp.Course), "required,course"); err != nil {
			return fmt.Errorf("course: %w", err)
		}
	}
	return nil
}
