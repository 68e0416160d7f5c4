package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"api/internal/configuration"
)

const recoveryCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRecoveryCode produces one fixed-length uppercase alphanumeric
// backup code from crypto/rand.
func GenerateRecoveryCode() (string, error) {
	code := make([]byte, configuration.RecoveryCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(recoveryCharset))))
		if err != nil {
			return "", err
		}
		code[i] = recoveryCharset[n.Int64()]
	}
	return string(code), nil
}

// GenerateRecoveryCodes produces count single-use backup codes.
func GenerateRecoveryCodes(count int) ([]string, error) {
	codes := make([]string, count)
	for i := range codes {
		code, err := GenerateRecoveryCode()
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

// HashRecoveryCode returns the SHA-256 digest stored in place of the code.
// Matching is case-sensitive: the code is hashed exactly as submitted, and
// consumption compares digests in SQL.
func HashRecoveryCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
