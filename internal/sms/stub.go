package sms

import (
	"crypto/rand"
	"math/big"
	"time"

	"api/internal/cache"
	"api/internal/configuration"

	"go.uber.org/zap"
)

// StubProvider stages codes in the cache and logs them instead of sending
// real messages. Suitable for development and demo environments only.
type StubProvider struct {
	Cache cache.ICache
}

func NewStubProvider(c cache.ICache) *StubProvider {
	return &StubProvider{Cache: c}
}

func (p *StubProvider) SendCode(userID string) error {
	code, err := generateCode(configuration.SMSCodeLength)
	if err != nil {
		return err
	}

	ttl := time.Duration(configuration.SMSCodeTTLSeconds) * time.Second
	if err = p.Cache.StoreSMSCode(userID, code, ttl); err != nil {
		return err
	}

	zap.L().Info("SMS code staged (stub provider, not delivered)",
		zap.String("user_id", userID),
		zap.String("code", code),
	)
	return nil
}

func (p *StubProvider) VerifyCode(userID string, code string) (bool, error) {
	if len(code) != configuration.SMSCodeLength {
		return false, nil
	}
	return p.Cache.ConsumeSMSCode(userID, code)
}

func generateCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
