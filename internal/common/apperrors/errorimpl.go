package apperrors

import (
	"errors"
	"strings"
)

type appError struct {
	msg           string
	base          error
	wrappedErrors []error
	statuscode    int
	expandError   bool
}

func (e *appError) Error() string {
	return e.msg
}

// ErrorAll returns the message followed by each attached cause when the
// error was marked expandable. Otherwise it matches Error.
func (e *appError) ErrorAll() string {
	if !e.expandError {
		return e.Error()
	}
	var b strings.Builder
	b.WriteString(e.msg)
	for _, err := range e.wrappedErrors {
		if err == e.base {
			continue
		}
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.wrappedErrors
}

// Msg derives an error with a new message that wraps e.
func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:           msg,
		base:          e,
		wrappedErrors: append([]error{e}, e.wrappedErrors...),
		statuscode:    e.statuscode,
		expandError:   e.expandError,
	}
}

// New derives a fresh error from e. It inherits the status code and matches
// e under errors.Is, but carries no causes.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:         msg,
		base:        e,
		statuscode:  e.statuscode,
		expandError: e.expandError,
	}
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:           msg,
		base:          e,
		wrappedErrors: append([]error{e}, errs...),
		statuscode:    e.statuscode,
		expandError:   e.expandError,
	}
}

func (e *appError) Err(errs ...error) Error {
	return &appError{
		msg:           e.msg,
		base:          e,
		wrappedErrors: append([]error{e}, errs...),
		statuscode:    e.statuscode,
		expandError:   e.expandError,
	}
}

func (e *appError) SetExpandError(flag bool) Error {
	cp := *e
	cp.expandError = flag
	return &cp
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

// Is reports whether target is e's template chain or any attached cause.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*appError); ok && t == e {
		return true
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.wrappedErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// New creates a root error.
func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}
