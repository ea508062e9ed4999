package session

import (
	"net/http"

	"github.com/tansive/nanobanana/internal/common/apperrors"
)

var (
	// ErrSessionError is the base error for all session-related errors.
	ErrSessionError apperrors.Error = apperrors.New("error in processing session").SetStatusCode(http.StatusInternalServerError)

	// ErrSessionNotFound is returned for ids that were never issued or whose
	// session has been deleted. The message carries no other detail.
	ErrSessionNotFound apperrors.Error = ErrSessionError.New("session not found").SetStatusCode(http.StatusNotFound)

	// ErrChannelFailed is returned when a conversational channel cannot be used.
	ErrChannelFailed apperrors.Error = ErrSessionError.New("channel failed")

	// ErrChannelClosed is returned by a channel after Close.
	ErrChannelClosed apperrors.Error = ErrChannelFailed.New("channel closed")
)
