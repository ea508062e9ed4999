// Package apperrors provides the template errors used across the gateway. An
// Error carries a message, a status code and any wrapped causes, and supports
// errors.Is against both its template and every attached cause.
package apperrors

// Error extends the standard error interface with template-style derivation.
// All methods return Error so calls can be chained.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // derives a new error with this one as template
	Msg(msg string) Error                  // derives a new message and wraps the original
	MsgErr(msg string, err ...error) Error // derives a new message and attaches causes
	Err(err ...error) Error                // keeps the message and attaches causes
	SetExpandError(bool) Error             // controls whether ErrorAll lists causes
	SetStatusCode(int) Error               // sets the status reported to callers
	StatusCode() int                       // returns the status code
	ErrorAll() string                      // message followed by every attached cause
	UnwrapAll() []error                    // attached causes
}
