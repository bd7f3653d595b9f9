package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentblog/app/models"
)

const (
	MaxTitleLength          = 100
	MaxCommentNameLength    = 50
	MaxCommentContentLength = 300
)

// Validator checks a single request value and returns a user-facing message on failure.
type Validator func(value string) error

var rules = newRules()

func newRules() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("course", func(fl validator.FieldLevel) bool {
		return models.Course(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Title accepts 1..100 characters after trimming.
func Title(value string) error {
	return text("title", value, MaxTitleLength)
}

// Description accepts any non-blank text.
func Description(value string) error {
	return text("description", value, 0)
}

// CommentName accepts 1..50 characters after trimming.
func CommentName(value string) error {
	return text("name", value, MaxCommentNameLength)
}

// CommentContent accepts 1..300 characters after trimming.
func CommentContent(value string) error {
	return text("content", value, MaxCommentContentLength)
}

// Course accepts exactly one of the known course names. Case and spacing matter.
func Course(value string) error {
	if err := rules.Var(value, "course"); err != nil {
		return fmt.Errorf("course must be one of: %s", courseList())
	}
	return nil
}

// ObjectID accepts a 24 character hex encoded ObjectID.
func ObjectID(value string) error {
	if err := rules.Var(value, "objectid"); err != nil {
		return errors.New("invalid id format")
	}
	return nil
}

func text(field, value string, max int) error {
	if err := rules.Var(value, "notblank"); err != nil {
		return fmt.Errorf("%s cannot be empty", field)
	}
	trimmed := strings.TrimSpace(value)
	if max > 0 {
		if err := rules.Var(trimmed, "max="+strconv.Itoa(max)); err != nil {
			return fmt.Errorf("%s must be at most %d characters", field, max)
		}
	}
	return nil
}

func courseList() string {
	names := make([]string, len(models.Courses))
	for i, c := range models.Courses {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
