package resilience

import (
	"net/http"

	"github.com/tansive/nanobanana/internal/common/apperrors"
)

var (
	// ErrInvalidPolicy is returned when a retry policy cannot produce a bounded backoff.
	ErrInvalidPolicy apperrors.Error = apperrors.New("invalid retry policy").SetStatusCode(http.StatusBadRequest)
)
