package config

import "github.com/tansive/nanobanana/internal/common/apperrors"

var (
	ErrConfigError       apperrors.Error = apperrors.New("configuration error")
	ErrReadConfig        apperrors.Error = ErrConfigError.New("error reading config file")
	ErrParseConfig       apperrors.Error = ErrConfigError.New("error parsing config file")
	ErrInvalidConfig     apperrors.Error = ErrConfigError.New("invalid configuration").SetExpandError(true)
	ErrUnsupportedFormat apperrors.Error = ErrInvalidConfig.New("unsupported config file format version")
)
