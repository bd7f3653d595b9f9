package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentblog/app/apperr"
	"studentblog/app/validation"
)

const (
	// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
	multipartMemory = 32 << 20
	// maxJSONBody bounds JSON and urlencoded bodies.
	maxJSONBody = 1 << 20
)

// readInput extracts everything the validation pipeline looks at from r.
// maxUpload bounds multipart bodies.
func readInput(w http.ResponseWriter, r *http.Request, maxUpload int64) (*validation.Input, error) {
	in := &validation.Input{
		Params:    mux.Vars(r),
		Query:     r.URL.Query(),
		Body:      map[string]string{},
		Malformed: map[string]string{},
	}
	if in.Params == nil {
		in.Params = map[string]string{}
	}

	if r.Body == nil || r.Body == http.NoBody {
		return in, nil
	}

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, badBody("malformed Content-Type header")
		}
		mediaType = mt
	}

	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload+multipartMemory)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, apperr.PayloadTooLarge("request body exceeds the %d byte limit", maxUpload)
			}
			return nil, badBody("malformed multipart body")
		}
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				in.Body[key] = values[0]
			}
		}
		in.Files = r.MultipartForm.File

	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			return nil, badBody("malformed form body")
		}
		for key, values := range r.PostForm {
			if len(values) > 0 {
				in.Body[key] = values[0]
			}
		}

	case "application/json", "":
		if err := decodeJSONBody(http.MaxBytesReader(w, r.Body, maxJSONBody), in); err != nil {
			return nil, err
		}

	default:
		return nil, apperr.UnsupportedMediaType("unsupported content type %q", mediaType)
	}

	return in, nil
}

// decodeJSONBody accepts a JSON object. String members land in Body, any
// other member is recorded as malformed.
func decodeJSONBody(body io.Reader, in *validation.Input) error {
	var raw map[string]json.RawMessage
	err := json.NewDecoder(body).Decode(&raw)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge("request body exceeds the %d byte limit", maxJSONBody)
		}
		return badBody("request body must be a JSON object")
	}

	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err != nil || strings.TrimSpace(string(value)) == "null" {
			in.Malformed[key] = key + " must be a string"
			continue
		}
		in.Body[key] = s
	}
	return nil
}

func badBody(message string) error {
	return apperr.Validation(apperr.FieldError{Field: "body", Location: string(validation.InBody), Message: message})
}

// objectID reads an already validated path parameter.
func objectID(in *validation.Input, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(in.Params[name])
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(apperr.FieldError{
			Field:    name,
			Location: string(validation.InPath),
			Message:  fmt.Sprintf("invalid %s format", name),
		})
	}
	return id, nil
}
