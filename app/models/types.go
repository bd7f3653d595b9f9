package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course is the closed set of subjects a post can be filed under.
type Course string

const (
	CourseWorkshop   Course = "TALLER III"
	CourseTechnology Course = "TECNOLOGÍA III"
	CourseSupervised Course = "PRÁCTICA SUPERVISADA"
)

// Courses lists every accepted course in display order.
var Courses = []Course{CourseWorkshop, CourseTechnology, CourseSupervised}

// Post represents a blog post with its embedded comments.
type Post struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id" validate:"required"`
	Title       string             `json:"title" bson:"title" validate:"required,max=100"`
	Description string             `json:"description" bson:"description" validate:"required"`
	Course      Course             `json:"course" bson:"course" validate:"required,course"`
	ImageURL    string             `json:"imageUrl" bson:"imageUrl" validate:"required"`
	Comments    []Comment          `json:"comments" bson:"comments" validate:"dive"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt" validate:"required"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Comment represents a comment embedded in a post.
type Comment struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id" validate:"required"`
	Name      string             `json:"name" bson:"name" validate:"required,max=50"`
	Content   string             `json:"content" bson:"content" validate:"required,max=300"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt" validate:"required"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PostPatch carries the subset of post fields a partial update changes.
// A nil field is left untouched.
type PostPatch struct {
	Title       *string
	Description *string
	Course      *Course
}

// PostFilter narrows a post listing. An empty Course matches every post.
type PostFilter struct {
	Course Course
}
