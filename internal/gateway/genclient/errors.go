package genclient

import (
	"net/http"

	"github.com/tansive/nanobanana/internal/common/apperrors"
)

var (
	// ErrClientError is the base error for failures raised before a request reaches the API.
	ErrClientError apperrors.Error = apperrors.New("image client error").SetStatusCode(http.StatusInternalServerError)

	// ErrMissingAPIKey is returned when no Gemini API key is configured.
	ErrMissingAPIKey apperrors.Error = ErrClientError.New("GEMINI_API_KEY environment variable is required. Set it or pass an api key in the config file")

	// ErrClientInit is returned when the genai client cannot be constructed.
	ErrClientInit apperrors.Error = ErrClientError.New("unable to create genai client")

	// ErrTooManyImages is returned when a composition exceeds MaxComposeImages.
	ErrTooManyImages apperrors.Error = ErrClientError.New("too many input images").SetStatusCode(http.StatusBadRequest)

	// ErrReadImage is returned when an input image cannot be read.
	ErrReadImage apperrors.Error = ErrClientError.New("unable to read input image").SetStatusCode(http.StatusBadRequest)
)
