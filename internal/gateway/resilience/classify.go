package resilience

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

var retryableStatusCodes = map[int]struct{}{
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusServiceUnavailable:  {},
}

// Markers looked for in errors that carry no status code.
var transientMarkers = []string{"RESOURCE_EXHAUSTED", "UNAVAILABLE"}

// RemoteError is implemented by errors that carry the status a remote
// service answered with. Local errors with an HTTP status for their own
// callers, such as apperrors values, do not implement it and are never
// judged by that status.
type RemoteError interface {
	error
	RemoteStatusCode() int
}

// IsRetryable reports whether err is a transient remote failure. Errors with
// a remote status code are judged by the code alone; the message is only
// consulted when no code is present.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := statusCode(err); ok {
		_, retryable := retryableStatusCodes[code]
		return retryable
	}
	msg := strings.ToUpper(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func statusCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	var re RemoteError
	if errors.As(err, &re) && re.RemoteStatusCode() != 0 {
		return re.RemoteStatusCode(), true
	}
	return 0, false
}
