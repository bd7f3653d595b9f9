package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnsupportedMediaType
	KindPayloadTooLarge
	KindStorage
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFound"
	case KindUnsupportedMediaType:
		return "UnsupportedMediaType"
	case KindPayloadTooLarge:
		return "PayloadTooLarge"
	case KindStorage:
		return "StorageError"
	case KindTooManyRequests:
		return "TooManyRequests"
	default:
		return "InternalError"
	}
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field    string `json:"field"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

// Error is the error type every layer hands to the transport.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(f.Field)
		b.WriteString(" ")
		b.WriteString(f.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports user-correctable field problems.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// NotFound reports a referenced post or comment that does not exist.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedMediaType reports an upload outside the MIME allow-list.
func UnsupportedMediaType(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnsupportedMediaType, Message: fmt.Sprintf(format, args...)}
}

// PayloadTooLarge reports an upload above the size ceiling.
func PayloadTooLarge(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPayloadTooLarge, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a persistence failure.
func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// TooManyRequests reports a client above the request-rate ceiling.
func TooManyRequests(message string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: message}
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindUnsupportedMediaType:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
