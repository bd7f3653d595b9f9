package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validPost() *Post {
	return &Post{
		ID:          primitive.NewObjectID(),
		Title:       "Valid Title",
		Description: "A description",
		Course:      CourseWorkshop,
		ImageURL:    "photo-1700000000000.jpg",
		Comments:    []Comment{},
		CreatedAt:   time.Now(),
	}
}

func TestPostValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Post)
		wantErr bool
	}{
		{
			name:    "valid post",
			mutate:  func(p *Post) {},
			wantErr: false,
		},
		{
			name:    "title at the limit",
			mutate:  func(p *Post) { p.Title = strings.Repeat("á", 100) },
			wantErr: false,
		},
		{
			name:    "title too long",
			mutate:  func(p *Post) { p.Title = strings.Repeat("a", 101) },
			wantErr: true,
		},
		{
			name:    "empty description",
			mutate:  func(p *Post) { p.Description = "" },
			wantErr: true,
		},
		{
			name:    "unknown course",
			mutate:  func(p *Post) { p.Course = "taller iii" },
			wantErr: true,
		},
		{
			name:    "missing image",
			mutate:  func(p *Post) { p.ImageURL = "" },
			wantErr: true,
		},
		{
			name:    "zero id",
			mutate:  func(p *Post) { p.ID = primitive.NilObjectID },
			wantErr: true,
		},
		{
			name:    "zero creation time",
			mutate:  func(p *Post) { p.CreatedAt = time.Time{} },
			wantErr: true,
		},
		{
			name: "invalid embedded comment",
			mutate: func(p *Post) {
				p.Comments = []Comment{{ID: primitive.NewObjectID(), Name: "Ana", CreatedAt: time.Now()}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := validPost()
			tt.mutate(post)
			err := post.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostBeforeCreate(t *testing.T) {
	post := &Post{
		Title:       "Test Post",
		Description: "Test Content",
	}

	assert.True(t, post.CreatedAt.IsZero())
	post.BeforeCreate()
	assert.False(t, post.ID.IsZero())
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
	assert.NotNil(t, post.Comments)
}

func TestPostCommentManagement(t *testing.T) {
	post := validPost()
	first := &Comment{ID: primitive.NewObjectID(), Name: "First", Content: "one"}
	second := &Comment{ID: primitive.NewObjectID(), Name: "Second", Content: "two"}

	t.Run("add comments newest first", func(t *testing.T) {
		assert.NoError(t, post.AddComment(first))
		assert.NoError(t, post.AddComment(second))
		assert.Len(t, post.Comments, 2)
		assert.Equal(t, second.ID, post.Comments[0].ID)
		assert.Equal(t, first.ID, post.Comments[1].ID)
	})

	t.Run("add nil comment", func(t *testing.T) {
		err := post.AddComment(nil)
		assert.Error(t, err)
	})

	t.Run("remove existing comment", func(t *testing.T) {
		err := post.RemoveComment(second.ID)
		assert.NoError(t, err)
		assert.Len(t, post.Comments, 1)
		assert.Equal(t, first.ID, post.Comments[0].ID)
	})

	t.Run("remove non-existent comment", func(t *testing.T) {
		err := post.RemoveComment(primitive.NewObjectID())
		assert.Error(t, err)
	})
}

func TestPostPatch(t *testing.T) {
	post := validPost()

	assert.True(t, PostPatch{}.IsEmpty())

	title := "New title"
	course := CourseSupervised
	patch := PostPatch{Title: &title, Course: &course}
	assert.False(t, patch.IsEmpty())

	patch.Apply(post)
	assert.Equal(t, "New title", post.Title)
	assert.Equal(t, CourseSupervised, post.Course)
	assert.Equal(t, "A description", post.Description)
}

func TestPostPatchValidate(t *testing.T) {
	long := strings.Repeat("x", 101)
	empty := ""
	bad := Course("taller iii")
	good := CourseTechnology

	assert.NoError(t, PostPatch{}.Validate())
	assert.NoError(t, PostPatch{Course: &good}.Validate())
	assert.Error(t, PostPatch{Title: &long}.Validate())
	assert.Error(t, PostPatch{Description: &empty}.Validate())
	assert.Error(t, PostPatch{Course: &bad}.Validate())
}

func TestCourseValid(t *testing.T) {
	for _, c := range Courses {
		assert.True(t, c.Valid(), c.String())
	}
	assert.False(t, Course("TALLER  III").Valid())
	assert.False(t, Course("").Valid())
}
