package helpers

import (
	"strings"
	"testing"
	"time"

	"api/internal/configuration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTOTPSecret(t *testing.T) {
	t.Run("should generate valid secret and URL", func(t *testing.T) {
		result, err := GenerateTOTPSecret("test@example.com")

		require.NoError(t, err)
		assert.NotEmpty(t, result.Secret, "secret should not be empty")
		assert.NotEmpty(t, result.URL, "URL should not be empty")
	})

	t.Run("should include issuer and account in URL", func(t *testing.T) {
		email := "user@domain.com"

		result, err := GenerateTOTPSecret(email)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(result.URL, "otpauth://totp/"))
		assert.Contains(t, result.URL, "issuer="+configuration.AppName)
		assert.Contains(t, result.URL, email)
	})

	t.Run("should generate base32 encoded secret", func(t *testing.T) {
		result, err := GenerateTOTPSecret("test@example.com")

		require.NoError(t, err)
		for _, char := range result.Secret {
			isBase32 := (char >= 'A' && char <= 'Z') || (char >= '2' && char <= '7')
			assert.True(t, isBase32, "secret should be base32 encoded, got char: %c", char)
		}
	})

	t.Run("should generate different secrets for same email", func(t *testing.T) {
		result1, err1 := GenerateTOTPSecret("test@example.com")
		result2, err2 := GenerateTOTPSecret("test@example.com")

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, result1.Secret, result2.Secret)
	})
}

func TestValidateTOTPCode(t *testing.T) {
	key, err := GenerateTOTPSecret("test@example.com")
	require.NoError(t, err)

	t.Run("should accept current code", func(t *testing.T) {
		code, genErr := GenerateTOTPCode(key.Secret, time.Now())
		require.NoError(t, genErr)

		assert.True(t, ValidateTOTPCode(key.Secret, code, configuration.TOTPSkew))
	})

	t.Run("should accept code within the drift window", func(t *testing.T) {
		// Two steps behind now, the edge of the accepted window.
		code, genErr := GenerateTOTPCode(key.Secret, time.Now().Add(-2*configuration.TOTPPeriod*time.Second))
		require.NoError(t, genErr)

		assert.True(t, ValidateTOTPCode(key.Secret, code, configuration.TOTPSkew))
	})

	t.Run("should reject code outside the drift window", func(t *testing.T) {
		code, genErr := GenerateTOTPCode(key.Secret, time.Now().Add(-5*configuration.TOTPPeriod*time.Second))
		require.NoError(t, genErr)

		assert.False(t, ValidateTOTPCode(key.Secret, code, configuration.TOTPSkew))
	})

	t.Run("should reject stale code when window is zero", func(t *testing.T) {
		code, genErr := GenerateTOTPCode(key.Secret, time.Now().Add(-2*configuration.TOTPPeriod*time.Second))
		require.NoError(t, genErr)

		assert.False(t, ValidateTOTPCode(key.Secret, code, 0))
	})

	t.Run("should reject malformed codes", func(t *testing.T) {
		assert.False(t, ValidateTOTPCode(key.Secret, "", configuration.TOTPSkew))
		assert.False(t, ValidateTOTPCode(key.Secret, "12345", configuration.TOTPSkew))
		assert.False(t, ValidateTOTPCode(key.Secret, "1234567", configuration.TOTPSkew))
		assert.False(t, ValidateTOTPCode(key.Secret, "abcdef", configuration.TOTPSkew))
	})

	t.Run("should reject code for a different secret", func(t *testing.T) {
		otherKey, genErr := GenerateTOTPSecret("other@example.com")
		require.NoError(t, genErr)

		code, genErr := GenerateTOTPCode(otherKey.Secret, time.Now())
		require.NoError(t, genErr)

		assert.False(t, ValidateTOTPCode(key.Secret, code, configuration.TOTPSkew))
	})
}
