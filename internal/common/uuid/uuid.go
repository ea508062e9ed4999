// Package uuid wraps github.com/google/uuid for the identifiers the gateway
// hands out: random (v4) ids for chat sessions and time-ordered (v7) ids for
// request tracing.
package uuid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UUID represents a UUID, aliased from github.com/google/uuid.UUID
type UUID = uuid.UUID

// Nil is the zero UUID value.
var Nil = uuid.Nil

// NewSessionID returns a new random (v4) session identifier. Session ids must
// not be guessable from each other, so time-ordered ids are not used here.
func NewSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewRequestID returns a time-ordered (v7) id for log correlation, falling
// back to a timestamp if the generator fails.
func NewRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return id.String()
}

// Parse parses a UUID string into a UUID value.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// IsUUIDv7 reports whether the given UUID is a UUIDv7.
func IsUUIDv7(id UUID) bool {
	return id.Version() == uuid.Version(7)
}
