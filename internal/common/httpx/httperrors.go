// Package httpx holds the JSON response helpers shared by HTTP handlers.
package httpx

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/tansive/nanobanana/internal/common/apperrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Error represents an HTTP error response with status code and description.
type Error struct {
	Description string `json:"description"`
	StatusCode  int    `json:"http_status_code"`
}

type errorRsp struct {
	Result int    `json:"result"`
	Error  string `json:"error"`
}

// Failure represents the error result code in error responses.
const Failure int = 0

// Send writes the error response. A nil writer is ignored.
func (e *Error) Send(w http.ResponseWriter) {
	if w == nil {
		return
	}
	rspJson, err := json.Marshal(&errorRsp{Result: Failure, Error: e.Description})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Unable to parse error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	w.Write(rspJson)
}

func (e *Error) Error() string {
	return e.Description
}

// SendError sends an application error, using its status code or 500.
func SendError(w http.ResponseWriter, err apperrors.Error) {
	if err == nil {
		return
	}
	statusCode := err.StatusCode()
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	(&Error{StatusCode: statusCode, Description: err.ErrorAll()}).Send(w)
}

// ErrReqMethodNotSupported returns an error for unsupported HTTP methods.
func ErrReqMethodNotSupported() *Error {
	return &Error{
		Description: "request method not supported",
		StatusCode:  http.StatusMethodNotAllowed,
	}
}

// ErrUnableToParseReqData returns an error when request data cannot be parsed.
func ErrUnableToParseReqData() *Error {
	return &Error{
		Description: "unable to parse request data",
		StatusCode:  http.StatusBadRequest,
	}
}

// ErrApplicationError returns an error for application-level failures.
func ErrApplicationError(err ...string) *Error {
	s := "unable to process request"
	if len(err) > 0 {
		s = err[0]
	}
	return &Error{
		Description: s,
		StatusCode:  http.StatusInternalServerError,
	}
}

// ErrRequestTimeout returns an error for request timeout.
func ErrRequestTimeout() *Error {
	return &Error{
		Description: "request timed out",
		StatusCode:  http.StatusRequestTimeout,
	}
}

// ErrRequestTooLarge returns an error when request body exceeds size limit.
func ErrRequestTooLarge(limit int64) *Error {
	return &Error{
		Description: fmt.Sprintf("request body too large (limit: %d bytes)", limit),
		StatusCode:  http.StatusRequestEntityTooLarge,
	}
}
