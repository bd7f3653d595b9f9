package validation

import (
	"context"
	"mime/multipart"
	"net/url"
	"strings"

	"studentblog/app/apperr"
)

// Location names the part of the request a value comes from.
type Location string

const (
	InPath  Location = "params"
	InQuery Location = "query"
	InBody  Location = "body"
)

// Input is everything a check may look at, extracted once from the request.
type Input struct {
	Params map[string]string
	Query  url.Values
	Body   map[string]string
	// Malformed holds body fields that were present with a non-text value.
	Malformed map[string]string
	Files     map[string][]*multipart.FileHeader
}

// Lookup returns the raw value of a field and whether it was supplied.
// An empty query parameter counts as absent.
func (in *Input) Lookup(loc Location, name string) (string, bool) {
	switch loc {
	case InPath:
		v, ok := in.Params[name]
		return v, ok
	case InQuery:
		v := in.Query.Get(name)
		return v, v != ""
	case InBody:
		v, ok := in.Body[name]
		return v, ok
	}
	return "", false
}

// Check is one step of a pipeline.
type Check interface {
	Check(ctx context.Context, in *Input) error
}

// CheckFunc adapts a function to the Check interface.
type CheckFunc func(ctx context.Context, in *Input) error

func (f CheckFunc) Check(ctx context.Context, in *Input) error {
	return f(ctx, in)
}

// Field declares the rule for one request value.
type Field struct {
	Name     string
	In       Location
	Optional bool
	Validate Validator
}

// PathParam declares a required path parameter.
func PathParam(name string, v Validator) Field {
	return Field{Name: name, In: InPath, Validate: v}
}

// OptionalQuery declares a query parameter that is checked only when present.
func OptionalQuery(name string, v Validator) Field {
	return Field{Name: name, In: InQuery, Optional: true, Validate: v}
}

// Required declares a required body field.
func Required(name string, v Validator) Field {
	return Field{Name: name, In: InBody, Validate: v}
}

// Optional declares a body field that is checked only when present.
func Optional(name string, v Validator) Field {
	return Field{Name: name, In: InBody, Optional: true, Validate: v}
}

// Fields evaluates every field and reports all failures together.
type Fields []Field

func (fs Fields) Check(_ context.Context, in *Input) error {
	var errs []apperr.FieldError
	for _, f := range fs {
		fail := func(msg string) {
			errs = append(errs, apperr.FieldError{Field: f.Name, Location: string(f.In), Message: msg})
		}

		if f.In == InBody {
			if msg, bad := in.Malformed[f.Name]; bad {
				fail(msg)
				continue
			}
		}

		value, ok := in.Lookup(f.In, f.Name)
		if !ok || (!f.Optional && strings.TrimSpace(value) == "") {
			if !f.Optional {
				fail(f.Name + " is required")
			}
			continue
		}

		if f.Validate != nil {
			if err := f.Validate(value); err != nil {
				fail(err.Error())
			}
		}
	}

	if len(errs) > 0 {
		return apperr.Validation(errs...)
	}
	return nil
}

// Pipeline runs checks in order and stops at the first one that fails.
type Pipeline []Check

func (p Pipeline) Run(ctx context.Context, in *Input) error {
	for _, c := range p {
		if err := c.Check(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
