package session

import (
	"time"

	"api/internal/cache"
	"api/internal/helpers"
	"api/internal/models"

	"github.com/google/uuid"
)

// Manager issues, resolves and revokes sessions. The session identifier is
// the only artifact the client keeps; the pairing lives in the cache until
// an explicit logout. No refresh or server-side expiry policy applies.
type Manager struct {
	Cache cache.ICache
}

func NewManager(c cache.ICache) *Manager {
	return &Manager{Cache: c}
}

// Create mints a session for a fully authenticated user.
func (m *Manager) Create(userID uuid.UUID) (models.Session, error) {
	token, err := helpers.NewSessionToken()
	if err != nil {
		return models.Session{}, err
	}

	if err = m.Cache.StoreSession(token, userID.String()); err != nil {
		return models.Session{}, err
	}

	return models.Session{
		UserID:    userID,
		SessionID: token,
		CreatedAt: time.Now(),
	}, nil
}

// Current resolves a client-provided session identifier. An unknown or
// cleared identifier yields found=false, never an error.
func (m *Manager) Current(sessionID string) (models.Session, bool, error) {
	if sessionID == "" {
		return models.Session{}, false, nil
	}

	rawUserID, found, err := m.Cache.GetSession(sessionID)
	if err != nil || !found {
		return models.Session{}, false, err
	}

	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		// A corrupt pairing is treated as no session at all.
		_ = m.Cache.DeleteSession(sessionID)
		return models.Session{}, false, nil
	}

	return models.Session{UserID: userID, SessionID: sessionID}, true, nil
}

// Destroy revokes a session. Destroying an unknown session is a no-op.
func (m *Manager) Destroy(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.Cache.DeleteSession(sessionID)
}
