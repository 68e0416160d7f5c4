package models

import (
	"time"

	"github.com/google/uuid"
)

// Session pairs an authenticated user with an unguessable session identifier.
// The identifier is the only artifact persisted client-side; the server keeps
// the pairing in the cache until logout.
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionKey is the context key under which the authenticated session is
// stored by the Authenticate middleware.
type SessionKey struct{}

// BodyKey is the context key under which the Validate middleware stores the
// decoded request body.
type BodyKey struct{}

// LoggerKey is the context key under which the Logger middleware stores the
// per-request logger.
type LoggerKey struct{}
