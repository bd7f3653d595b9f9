package controllers

import (
	"net/http"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"

	"studentblog/app/apperr"
	"studentblog/app/models"
	"studentblog/app/repositories"
	"studentblog/app/services"
	"studentblog/app/uploads"
	"studentblog/app/validation"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
	images      *uploads.Gatekeeper
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, images *uploads.Gatekeeper) *PostController {
	return &PostController{postService: postService, images: images}
}

// NewPostControllerWithDB creates a new PostController backed by a badger database
func NewPostControllerWithDB(db *badger.DB, images *uploads.Gatekeeper) *PostController {
	return NewPostController(services.NewPostService(repositories.NewBadgerPostRepository(db)), images)
}

// Images returns the gatekeeper used for post pictures.
func (pc *PostController) Images() *uploads.Gatekeeper {
	return pc.images
}

// Index lists posts, optionally narrowed to one course
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request, in *validation.Input) error {
	course, _ := in.Lookup(validation.InQuery, "course")
	posts, err := pc.postService.ListPosts(r.Context(), models.Course(course))
	if err != nil {
		return err
	}
	sendJSON(w, http.StatusOK, "posts", posts)
	return nil
}

// Show returns a single post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request, in *validation.Input) error {
	id, err := objectID(in, "id")
	if err != nil {
		return err
	}
	post, err := pc.postService.GetPost(r.Context(), id)
	if err != nil {
		return err
	}
	sendJSON(w, http.StatusOK, "post", post)
	return nil
}

// Create stores the uploaded picture and then the post. The picture is
// removed again if the post cannot be saved.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request, in *validation.Input) error {
	files := in.Files["image"]
	if len(files) == 0 {
		return apperr.Validation(apperr.FieldError{Field: "image", Location: string(validation.InBody), Message: "image is required"})
	}
	img, err := pc.images.Store(files[0])
	if err != nil {
		return err
	}

	post, err := pc.postService.CreatePost(r.Context(), services.NewPost{
		Title:       in.Body["title"],
		Description: in.Body["description"],
		Course:      models.Course(in.Body["course"]),
		ImageURL:    img.Name,
	})
	if err != nil {
		if rmErr := pc.images.Remove(img.Name); rmErr != nil {
			log.WithError(rmErr).WithField("image", img.Name).Warn("[posts] failed to remove orphaned image")
		}
		return err
	}

	sendJSON(w, http.StatusCreated, "post", post)
	return nil
}

// Update applies a partial update from the supplied fields
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request, in *validation.Input) error {
	id, err := objectID(in, "id")
	if err != nil {
		return err
	}

	var patch models.PostPatch
	if v, ok := in.Body["title"]; ok {
		patch.Title = &v
	}
	if v, ok := in.Body["description"]; ok {
		patch.Description = &v
	}
	if v, ok := in.Body["course"]; ok {
		course := models.Course(v)
		patch.Course = &course
	}

	post, err := pc.postService.UpdatePost(r.Context(), id, patch)
	if err != nil {
		return err
	}
	sendJSON(w, http.StatusOK, "post", post)
	return nil
}

// Delete removes a post and its comments
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request, in *validation.Input) error {
	id, err := objectID(in, "id")
	if err != nil {
		return err
	}
	if err := pc.postService.DeletePost(r.Context(), id); err != nil {
		return err
	}
	sendJSON(w, http.StatusOK, "message", "post deleted")
	return nil
}
