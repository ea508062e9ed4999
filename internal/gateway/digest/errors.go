package digest

import (
	"net/http"

	"github.com/tansive/nanobanana/internal/common/apperrors"
)

var (
	ErrDigestError   apperrors.Error = apperrors.New("error validating digest").SetStatusCode(http.StatusInternalServerError)
	ErrInvalidDigest apperrors.Error = ErrDigestError.New("invalid digest").SetStatusCode(http.StatusBadRequest).SetExpandError(true)
	ErrInvalidFormat apperrors.Error = ErrInvalidDigest.New("digest is not valid JSON or YAML")
)
