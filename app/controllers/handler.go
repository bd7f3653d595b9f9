package controllers

import (
	"net/http"

	"studentblog/app/uploads"
	"studentblog/app/validation"
)

// Action runs once the request has passed its checks.
type Action func(w http.ResponseWriter, r *http.Request, in *validation.Input) error

// Handle builds a handler that extracts the request input, runs checks in
// order and calls action only when every check passes.
func Handle(checks validation.Pipeline, action Action) http.Handler {
	return HandleWithLimit(uploads.DefaultMaxSize, checks, action)
}

// HandleWithLimit is Handle with an explicit multipart body ceiling.
func HandleWithLimit(maxUpload int64, checks validation.Pipeline, action Action) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in, err := readInput(w, r, maxUpload)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}

		if err := checks.Run(r.Context(), in); err != nil {
			WriteError(w, r, err)
			return
		}
		if err := action(w, r, in); err != nil {
			WriteError(w, r, err)
		}
	})
}
