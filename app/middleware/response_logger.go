package middleware

import "net/http"

// ResponseLogger remembers the status code written through it.
type ResponseLogger struct {
	w      http.ResponseWriter
	status int
}

func NewResponseLogger(w http.ResponseWriter) *ResponseLogger {
	return &ResponseLogger{w, http.StatusOK}
}

func (l *ResponseLogger) WriteHeader(code int) {
	l.status = code
	l.w.WriteHeader(code)
}

func (l *ResponseLogger) Write(b []byte) (int, error) {
	return l.w.Write(b)
}

func (l *ResponseLogger) Header() http.Header {
	return l.w.Header()
}

func (l *ResponseLogger) Status() int {
	return l.status
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (l *ResponseLogger) Unwrap() http.ResponseWriter {
	return l.w
}
