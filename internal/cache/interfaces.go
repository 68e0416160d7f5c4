package cache

import "time"

// ICache holds the ephemeral auth state: session pairings, TOTP replay
// marks, and SMS stub codes. Implementations must be safe for concurrent
// use; the conditional operations (MarkTOTPCodeUsed, ConsumeSMSCode) are
// atomic check-and-set / check-and-delete primitives.
type ICache interface {
	// StoreSession associates a session identifier with a user id.
	StoreSession(sessionID string, userID string) error
	// GetSession returns the user id for a session, or found=false.
	GetSession(sessionID string) (userID string, found bool, err error)
	// DeleteSession removes a session pairing. Deleting a missing session is not an error.
	DeleteSession(sessionID string) error

	// MarkTOTPCodeUsed marks a code as consumed for a user. Returns false if
	// the code was already marked within the replay TTL.
	MarkTOTPCodeUsed(userID string, code string) (bool, error)
	// IsTOTPCodeUsed checks the replay mark without setting it.
	IsTOTPCodeUsed(userID string, code string) (bool, error)

	// StoreSMSCode stages a one-time SMS code for a user with a TTL,
	// replacing any previous one.
	StoreSMSCode(userID string, code string, ttl time.Duration) error
	// ConsumeSMSCode atomically checks and removes the staged code. Returns
	// true only when the submitted code matches an unexpired staged code.
	ConsumeSMSCode(userID string, code string) (bool, error)

	Close() error
}
