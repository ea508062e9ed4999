package artifact

import (
	"net/http"

	"github.com/tansive/nanobanana/internal/common/apperrors"
)

var (
	ErrArtifactError apperrors.Error = apperrors.New("error saving artifact").SetStatusCode(http.StatusInternalServerError)
	ErrCreateDir     apperrors.Error = ErrArtifactError.New("unable to create output directory")
	ErrWriteImage    apperrors.Error = ErrArtifactError.New("unable to write image")
)
