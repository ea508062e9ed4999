package apperrors

import "strings"

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field  string // JSON path or parameter name
	Value  any    // offending value, if known
	ErrStr string // human readable reason
}

func (ve ValidationError) Error() string {
	if len(ve.Field) > 0 {
		return ve.Field + ": " + ve.ErrStr
	}
	return ve.ErrStr
}

// ValidationErrors collects every rejected field of one document.
type ValidationErrors []ValidationError

func (ves ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ves))
	for _, ve := range ves {
		msgs = append(msgs, ve.Error())
	}
	return strings.Join(msgs, "; ")
}
