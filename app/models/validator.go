package models

import (
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("course", func(fl validator.FieldLevel) bool {
		return Course(fl.Field().String()).Valid()
	})
	return v
}

// Valid reports whether c is one of the accepted courses.
func (c Course) Valid() bool {
	for _, known := range Courses {
		if c == known {
			return true
		}
	}
	return false
}

func (c Course) String() string {
	return string(c)
}
