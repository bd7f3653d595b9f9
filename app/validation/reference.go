package validation

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentblog/app/apperr"
)

// PostResolver confirms that a post exists.
type PostResolver interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Reference rejects the request with NotFound unless the path parameter
// names an existing post.
func Reference(param string, resolver PostResolver) Check {
	return CheckFunc(func(ctx context.Context, in *Input) error {
		raw, _ := in.Lookup(InPath, param)
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return apperr.Validation(apperr.FieldError{Field: param, Location: string(InPath), Message: "invalid id format"})
		}

		ok, err := resolver.Exists(ctx, id)
		if err != nil {
			return apperr.Storage("failed to look up post", err)
		}
		if !ok {
			return apperr.NotFound("post %s not found", raw)
		}
		return nil
	})
}
