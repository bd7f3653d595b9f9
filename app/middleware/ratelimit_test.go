package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"studentblog/app/apperr"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3, 15*time.Minute)
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/blog/v1/posts", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do("192.168.1.10:1000"), "request %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, do("192.168.1.10:1000"))

	t.Run("a new connection from the same host is still limited", func(t *testing.T) {
		assert.Equal(t, http.StatusTooManyRequests, do("192.168.1.10:2000"))
	})

	t.Run("other clients are independent", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do("192.168.1.11:1000"))
	})

	t.Run("window reset", func(t *testing.T) {
		now = now.Add(15*time.Minute + time.Second)
		assert.Equal(t, http.StatusOK, do("192.168.1.10:1000"))
	})
}

func TestRateLimiterOnLimit(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	var got error
	rl.OnLimit = func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(apperr.HTTPStatus(apperr.KindOf(err)))
	}
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.1.1.1:80"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, apperr.KindTooManyRequests, apperr.KindOf(got))
}

func TestRateLimiterIgnoresForgedForwardedFor(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("203.0.113.%d", i))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 2, allowed)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.clients, 1)
}

func TestRateLimiterTrustProxy(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	rl.TrustProxy = true
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", forwarded)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, do("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("198.51.100.1, 10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("198.51.100.2"), "clients behind the proxy have their own buckets")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remote     string
		trustProxy bool
		want       string
	}{
		{"remote addr without port", nil, "10.0.0.1:4321", false, "10.0.0.1"},
		{"forwarded ignored by default", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "10.0.0.2:80", false, "10.0.0.2"},
		{"real ip ignored by default", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.2:80", false, "10.0.0.2"},
		{"forwarded first hop behind proxy", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.2"}, "10.0.0.2:80", true, "203.0.113.5"},
		{"real ip behind proxy", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.2:80", true, "198.51.100.7"},
		{"no headers behind proxy", nil, "10.0.0.2:80", true, "10.0.0.2"},
		{"unparseable remote addr", nil, "pipe", false, "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req, tt.trustProxy))
		})
	}
}
