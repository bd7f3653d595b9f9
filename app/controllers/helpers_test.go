package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"studentblog/app/repositories/mock"
	"studentblog/app/services"
	"studentblog/app/uploads"
)

type fixture struct {
	store    *mock.Store
	posts    *PostController
	comments *CommentController
	router   *mux.Router
	dir      string
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	store := mock.NewStore()
	dir := t.TempDir()
	f := &fixture{
		store:    store,
		posts:    NewPostController(services.NewPostService(mock.NewPostRepository(store)), uploads.New(dir, 1<<20)),
		comments: NewCommentController(services.NewCommentService(mock.NewCommentRepository(store))),
		router:   mux.NewRouter(),
		dir:      dir,
	}

	f.router.Handle("/posts", Handle(nil, f.posts.Index)).Methods(http.MethodGet)
	f.router.Handle("/posts", Handle(nil, f.posts.Create)).Methods(http.MethodPost)
	f.router.Handle("/posts/{id}", Handle(nil, f.posts.Show)).Methods(http.MethodGet)
	f.router.Handle("/posts/{id}", Handle(nil, f.posts.Update)).Methods(http.MethodPut)
	f.router.Handle("/posts/{id}", Handle(nil, f.posts.Delete)).Methods(http.MethodDelete)
	f.router.Handle("/posts/{id}/comments", Handle(nil, f.comments.Index)).Methods(http.MethodGet)
	f.router.Handle("/posts/{id}/comments", Handle(nil, f.comments.Create)).Methods(http.MethodPost)
	f.router.Handle("/posts/{id}/comments/{commentId}", Handle(nil, f.comments.Delete)).Methods(http.MethodDelete)
	return f
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func postForm(t *testing.T, fields map[string]string, withImage bool) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withImage {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, "photo.png"))
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}
