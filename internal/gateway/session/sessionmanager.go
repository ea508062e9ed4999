package session

import "context"

// SessionManager defines session lifecycle management for image chats.
// Every operation on an existing session starts with GetSession so unknown
// or deleted ids fail with ErrSessionNotFound.
type SessionManager interface {
	// CreateSession validates model, opens a channel and returns the new session id.
	CreateSession(ctx context.Context, model string) (string, error)

	// GetSession returns the live session for id.
	GetSession(id string) (*Session, error)

	// ListSessions returns the ids of all live sessions in no particular order.
	ListSessions() []string

	// DeleteSession removes the session and releases its channel. The id
	// is never valid again.
	DeleteSession(id string) error
}
