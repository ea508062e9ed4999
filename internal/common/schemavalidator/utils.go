package schemavalidator

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tansive/nanobanana/internal/common/apperrors"
)

// fieldName reports a struct field by its toml, json or mapstructure name,
// in that order, so validation errors use the names callers wrote. Squashed
// embedded structs contribute no path segment.
func fieldName(field reflect.StructField) string {
	for _, key := range []string{"toml", "json", "mapstructure"} {
		tag := field.Tag.Get(key)
		if tag == "" || tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			return parts[0]
		}
		if field.Anonymous && slices.Contains(parts[1:], "squash") {
			return ""
		}
	}
	return field.Name
}

// ValidationErrors converts the error returned by V().Struct into
// apperrors.ValidationErrors. Any other error yields nil.
func ValidationErrors(err error) apperrors.ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(apperrors.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperrors.ValidationError{
			Field:  fieldPath(fe.Namespace()),
			Value:  fe.Value(),
			ErrStr: describe(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name and empty segments from a validator
// namespace.
func fieldPath(ns string) string {
	segs := strings.Split(ns, ".")
	if len(segs) > 1 {
		segs = segs[1:]
	}
	return strings.Join(slices.DeleteFunc(segs, func(s string) bool { return s == "" }), ".")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "duration":
		return "must be a duration such as 2s or 1m30s"
	case "semver":
		return "must be a semantic version"
	case "noSpaces":
		return "must not contain whitespace"
	case "notBlank":
		return "must not be blank"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}
