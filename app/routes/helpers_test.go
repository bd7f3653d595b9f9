package routes

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
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"studentblog/app/controllers"
	"studentblog/app/middleware"
	"studentblog/app/repositories"
	"studentblog/app/uploads"
)

const basePath = "/blog/v1"

type testEnv struct {
	handler   http.Handler
	db        *badger.DB
	uploadDir string
	limiter   *middleware.RateLimiter
}

func setupTestDB(t *testing.T) *badger.DB {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestRouter(t *testing.T, rateLimit int) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	uploadDir := t.TempDir()
	images := uploads.New(uploadDir, 1<<20)

	limiter := middleware.NewRateLimiter(rateLimit, 15*time.Minute)
	t.Cleanup(limiter.Stop)

	handler := New(Options{
		BasePath:    basePath,
		ImagesPath:  "/images/posts-pictures/",
		Posts:       controllers.NewPostControllerWithDB(db, images),
		Comments:    controllers.NewCommentControllerWithDB(db),
		Resolver:    repositories.NewBadgerPostRepository(db),
		RateLimiter: limiter,
		ServiceName: "studentblog-test",
	})
	return &testEnv{handler: handler, db: db, uploadDir: uploadDir, limiter: limiter}
}

type filePart struct {
	field, name, contentType string
	content                  []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func jpeg() filePart {
	return filePart{field: "image", name: "cover.jpg", contentType: "image/jpeg", content: []byte{0xFF, 0xD8, 0xFF, 0xE0, 'j', 'p', 'g'}}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return e.do(t, method, path, body, "application/json")
}

type postBody struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Course      string        `json:"course"`
	ImageURL    string        `json:"imageUrl"`
	Comments    []commentBody `json:"comments"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type commentBody struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

type envelope struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Error    string        `json:"error"`
	Post     *postBody     `json:"post"`
	Posts    []postBody    `json:"posts"`
	Comment  *commentBody  `json:"comment"`
	Comments []commentBody `json:"comments"`
	Status   string        `json:"status"`
	Errors   []struct {
		Field    string `json:"field"`
		Location string `json:"location"`
		Message  string `json:"message"`
	} `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func (e *testEnv) createPost(t *testing.T, title, course string) postBody {
	t.Helper()
	body, ct := multipartBody(t, map[string]string{
		"title":       title,
		"description": "Description of " + title,
		"course":      course,
	}, jpeg())
	w := e.do(t, http.MethodPost, basePath+"/posts", body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decode(t, w)
	require.NotNil(t, env.Post)
	return *env.Post
}
