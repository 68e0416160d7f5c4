package cache

import (
	"crypto/subtle"
	"sync"
	"time"

	"api/internal/configuration"
)

type expiringValue struct {
	value     string
	expiresAt time.Time
}

func (v expiringValue) expired(now time.Time) bool {
	return !v.expiresAt.IsZero() && now.After(v.expiresAt)
}

// MemoryCache is the in-process ICache used when no Redis is configured and
// in tests. A single mutex guards all maps, which makes the conditional
// operations atomic.
type MemoryCache struct {
	mu        sync.Mutex
	sessions  map[string]string
	totpMarks map[string]time.Time
	smsCodes  map[string]expiringValue
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		sessions:  make(map[string]string),
		totpMarks: make(map[string]time.Time),
		smsCodes:  make(map[string]expiringValue),
	}
}

func (m *MemoryCache) StoreSession(sessionID string, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = userID
	return nil
}

func (m *MemoryCache) GetSession(sessionID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.sessions[sessionID]
	return userID, ok, nil
}

func (m *MemoryCache) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *MemoryCache) MarkTOTPCodeUsed(userID string, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := userID + ":" + code
	now := time.Now()
	if expiresAt, ok := m.totpMarks[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	m.totpMarks[key] = now.Add(configuration.TOTPCodeTTL * time.Second)
	return true, nil
}

func (m *MemoryCache) IsTOTPCodeUsed(userID string, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.totpMarks[userID+":"+code]
	return ok && time.Now().Before(expiresAt), nil
}

func (m *MemoryCache) StoreSMSCode(userID string, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.smsCodes[userID] = expiringValue{value: code, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryCache) ConsumeSMSCode(userID string, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged, ok := m.smsCodes[userID]
	if !ok || staged.expired(time.Now()) {
		delete(m.smsCodes, userID)
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(staged.value), []byte(code)) != 1 {
		return false, nil
	}
	delete(m.smsCodes, userID)
	return true, nil
}

func (m *MemoryCache) Close() error { return nil }
