package mcpservice

import (
	"net/http"

	"github.com/tansive/nanobanana/internal/common/apperrors"
)

var (
	// ErrMCPServiceError is the base error for MCP service errors.
	ErrMCPServiceError apperrors.Error = apperrors.New("mcp service error").SetStatusCode(http.StatusInternalServerError)

	// ErrInvalidRequest is returned when the request is malformed or invalid.
	ErrInvalidRequest apperrors.Error = ErrMCPServiceError.New("invalid request").SetStatusCode(http.StatusBadRequest)

	// ErrInvalidArguments is returned when tool arguments cannot be decoded
	// or fail validation.
	ErrInvalidArguments apperrors.Error = ErrInvalidRequest.New("invalid tool arguments").SetExpandError(true)

	// ErrMissingDependency is returned when the service is built without a
	// collaborator a tool needs.
	ErrMissingDependency apperrors.Error = ErrMCPServiceError.New("service dependency is nil")
)
