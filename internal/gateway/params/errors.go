package params

import (
	"net/http"

	"github.com/tansive/nanobanana/internal/common/apperrors"
)

var (
	// ErrInvalidParam is the base error for rejected tool parameters.
	ErrInvalidParam apperrors.Error = apperrors.New("invalid parameter").SetStatusCode(http.StatusBadRequest)

	ErrInvalidAspectRatio     apperrors.Error = ErrInvalidParam.New("invalid aspect ratio")
	ErrInvalidResolution      apperrors.Error = ErrInvalidParam.New("invalid resolution")
	ErrInvalidModel           apperrors.Error = ErrInvalidParam.New("invalid model")
	ErrInvalidSeed            apperrors.Error = ErrInvalidParam.New("invalid seed")
	ErrInvalidSafetyThreshold apperrors.Error = ErrInvalidParam.New("invalid safety threshold")
)
