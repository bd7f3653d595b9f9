package routes

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"studentblog/app/controllers"
	"studentblog/app/middleware"
	"studentblog/app/uploads"
	"studentblog/app/validation"
)

// Endpoint declares one API route together with the checks that guard it.
type Endpoint struct {
	Method string
	Path   string
	Checks validation.Pipeline
	Action controllers.Action
	// MaxUpload bounds multipart bodies. Zero means the default ceiling.
	MaxUpload int64
}

// Options wires the router to its collaborators.
type Options struct {
	BasePath   string
	ImagesPath string

	Posts    *controllers.PostController
	Comments *controllers.CommentController
	Resolver validation.PostResolver

	RateLimiter *middleware.RateLimiter
	CORS        middleware.CORSOptions
	ServiceName string
	// AccessLog, when set, receives one entry per request.
	AccessLog middleware.MessageWriter
}

// Endpoints returns the API routes in registration order.
func Endpoints(opts Options) []Endpoint {
	posts, comments, resolver := opts.Posts, opts.Comments, opts.Resolver
	images := posts.Images()

	postID := validation.Fields{validation.PathParam("id", validation.ObjectID)}
	exists := validation.Reference("id", resolver)

	return []Endpoint{
		{
			Method: http.MethodGet,
			Path:   "/posts",
			Checks: validation.Pipeline{
				validation.Fields{validation.OptionalQuery("course", validation.Course)},
			},
			Action: posts.Index,
		},
		{
			Method: http.MethodGet,
			Path:   "/posts/{id}",
			Checks: validation.Pipeline{postID, exists},
			Action: posts.Show,
		},
		{
			Method: http.MethodPost,
			Path:   "/posts",
			Checks: validation.Pipeline{
				images.Require("image"),
				validation.Fields{
					validation.Required("title", validation.Title),
					validation.Required("description", validation.Description),
					validation.Required("course", validation.Course),
				},
			},
			Action:    posts.Create,
			MaxUpload: images.MaxSize(),
		},
		{
			Method: http.MethodPut,
			Path:   "/posts/{id}",
			Checks: validation.Pipeline{
				postID,
				exists,
				validation.Fields{
					validation.Optional("title", validation.Title),
					validation.Optional("description", validation.Description),
					validation.Optional("course", validation.Course),
				},
			},
			Action: posts.Update,
		},
		{
			Method: http.MethodDelete,
			Path:   "/posts/{id}",
			Checks: validation.Pipeline{postID, exists},
			Action: posts.Delete,
		},
		{
			Method: http.MethodPost,
			Path:   "/posts/{id}/comments",
			Checks: validation.Pipeline{
				postID,
				exists,
				validation.Fields{
					validation.Required("name", validation.CommentName),
					validation.Required("content", validation.CommentContent),
				},
			},
			Action: comments.Create,
		},
		{
			Method: http.MethodGet,
			Path:   "/posts/{id}/comments",
			Checks: validation.Pipeline{postID, exists},
			Action: comments.Index,
		},
		{
			Method: http.MethodDelete,
			Path:   "/posts/{id}/comments/{commentId}",
			Checks: validation.Pipeline{
				validation.Fields{
					validation.PathParam("id", validation.ObjectID),
					validation.PathParam("commentId", validation.ObjectID),
				},
				exists,
			},
			Action: comments.Delete,
		},
	}
}

// SetupRoutes registers the API, health and image routes on a new router.
func SetupRoutes(opts Options) *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix(opts.BasePath).Subrouter()
	api.Use(middleware.ContentTypeJSON)
	for _, e := range Endpoints(opts) {
		maxUpload := e.MaxUpload
		if maxUpload == 0 {
			maxUpload = uploads.DefaultMaxSize
		}
		api.Handle(e.Path, controllers.HandleWithLimit(maxUpload, e.Checks, e.Action)).Methods(e.Method)
	}

	router.HandleFunc("/health", controllers.Health).Methods(http.MethodGet)

	if opts.ImagesPath != "" {
		prefix := "/" + strings.Trim(opts.ImagesPath, "/") + "/"
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(opts.Posts.Images().Dir())))
		router.PathPrefix(prefix).Handler(noDirListing(files)).Methods(http.MethodGet, http.MethodHead)
	}

	return router
}

// New returns the complete HTTP handler: the router wrapped in the
// middleware every request passes through.
func New(opts Options) http.Handler {
	var h http.Handler = SetupRoutes(opts)

	if opts.RateLimiter != nil {
		opts.RateLimiter.OnLimit = controllers.WriteError
		h = opts.RateLimiter.Middleware(h)
	}
	if opts.CORS.AllowedOrigins == nil {
		opts.CORS = middleware.DefaultCORSOptions
	}
	h = middleware.CORS(opts.CORS)(h)
	h = middleware.SecurityHeaders(h)
	if opts.AccessLog != nil {
		h = middleware.AccessLog(opts.ServiceName, opts.AccessLog)(h)
	}
	h = middleware.Recoverer(h)
	h = middleware.Logger(h)
	h = middleware.RequestID(h)
	return h
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		if name == "" || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
