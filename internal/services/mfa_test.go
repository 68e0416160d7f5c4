package services

import (
	"strings"
	"testing"
	"time"

	"api/internal/configuration"
	apierrors "api/internal/errors"
	"api/internal/helpers"
	"api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sessionFor(response models.AuthLoginResponse) models.Session {
	return models.Session{UserID: response.User.ID, SessionID: response.SessionToken}
}

func TestMFASetup(t *testing.T) {
	t.Run("should stage secret, QR code and recovery codes", func(t *testing.T) {
		env := newTestEnv(t)
		current := sessionFor(env.signup(t, "alice@example.com", "alice"))

		setup, err := env.mfa.Setup(zap.NewNop(), current, nil)

		require.NoError(t, err)
		assert.NotEmpty(t, setup.Secret)
		assert.True(t, strings.HasPrefix(setup.QRCodeURI, "otpauth://totp/"))
		assert.True(t, strings.HasPrefix(setup.QRCodeImage, "data:image/png;base64,"))
		assert.Len(t, setup.BackupCodes, configuration.RecoveryCodeCount)
		assert.Equal(t, configuration.AppName, setup.Issuer)

		// Stored encrypted, never in the clear.
		user, found := env.users.FindByID(current.UserID)
		require.True(t, found)
		assert.NotEmpty(t, user.PendingTOTPSecret)
		assert.NotEqual(t, setup.Secret, user.PendingTOTPSecret)
		assert.False(t, user.MFAEnabled)
	})

	t.Run("staged secret must not satisfy a login", func(t *testing.T) {
		env := newTestEnv(t)
		current := sessionFor(env.signup(t, "alice@example.com", "alice"))

		_, err := env.mfa.Setup(zap.NewNop(), current, nil)
		require.NoError(t, err)

		// MFA is not enabled, so login goes straight to a session.
		response, err := env.auth.Login(zap.NewNop(), models.Session{}, nil, models.AuthLoginBody{
			Email:    "alice@example.com",
			Password: testPassword,
		})
		require.NoError(t, err)
		assert.False(t, response.RequiresMFA)
		assert.NotEmpty(t, response.SessionToken)
	})

	t.Run("should reject setup when MFA is already enabled", func(t *testing.T) {
		env := newTestEnv(t)
		signupResponse := env.signup(t, "alice@example.com", "alice")
		env.enableMFAFor(t, signupResponse)

		_, err := env.mfa.Setup(zap.NewNop(), sessionFor(signupResponse), nil)
		requireAPIError(t, err, apierrors.ErrMFAAlreadyEnabled)
	})
}

func TestMFAEnable(t *testing.T) {
	t.Run("should enable with a valid code from the staged secret", func(t *testing.T) {
		env := newTestEnv(t)
		current := sessionFor(env.signup(t, "alice@example.com", "alice"))

		setup, err := env.mfa.Setup(zap.NewNop(), current, nil)
		require.NoError(t, err)

		code, err := helpers.GenerateTOTPCode(setup.Secret, time.Now())
		require.NoError(t, err)

		response, err := env.mfa.Enable(zap.NewNop(), current, nil, models.MFACodeBody{Code: code})
		require.NoError(t, err)
		assert.True(t, response.Success)

		user, found := env.users.FindByID(current.UserID)
		require.True(t, found)
		assert.True(t, user.MFAEnabled)
		assert.NotEmpty(t, user.TOTPSecret)
		assert.Empty(t, user.PendingTOTPSecret)
		assert.ElementsMatch(t,
			[]models.BackupMethod{models.BackupMethodTOTP, models.BackupMethodRecovery},
			user.BackupMethods,
		)

		assert.Contains(t, env.activity.actions(), configuration.ActivityMFAEnabled)
	})

	t.Run("should reject a wrong code and stay disabled", func(t *testing.T) {
		env := newTestEnv(t)
		current := sessionFor(env.signup(t, "alice@example.com", "alice"))

		_, err := env.mfa.Setup(zap.NewNop(), current, nil)
		require.NoError(t, err)

		_, err = env.mfa.Enable(zap.NewNop(), current, nil, models.MFACodeBody{Code: "000000"})
		requireAPIError(t, err, apierrors.ErrInvalidCode)

		user, found := env.users.FindByID(current.UserID)
		require.True(t, found)
		assert.False(t, user.MFAEnabled)
	})

	t.Run("should require setup before enable", func(t *testing.T) {
		env := newTestEnv(t)
		current := sessionFor(env.signup(t, "alice@example.com", "alice"))

		_, err := env.mfa.Enable(zap.NewNop(), current, nil, models.MFACodeBody{Code: "123456"})
		requireAPIError(t, err, apierrors.ErrMFASetupRequired)
	})

	t.Run("should reject enabling twice", func(t *testing.T) {
		env := newTestEnv(t)
		signupResponse := env.signup(t, "alice@example.com", "alice")
		secret, _ := env.enableMFAFor(t, signupResponse)

		code, err := helpers.GenerateTOTPCode(secret, time.Now())
		require.NoError(t, err)

		_, err = env.mfa.Enable(zap.NewNop(), sessionFor(signupResponse), nil, models.MFACodeBody{Code: code})
		requireAPIError(t, err, apierrors.ErrMFAAlreadyEnabled)
	})
}

func TestMFADisable(t *testing.T) {
	t.Run("should clear all MFA state with a valid code", func(t *testing.T) {
		env := newTestEnv(t)
		signupResponse := env.signup(t, "alice@example.com", "alice")
		secret, backupCodes := env.enableMFAFor(t, signupResponse)
		current := sessionFor(signupResponse)

		code, err := helpers.GenerateTOTPCode(secret, time.Now())
		require.NoError(t, err)

		response, err := env.mfa.Disable(zap.NewNop(), current, nil, models.MFACodeBody{Code: code})
		require.NoError(t, err)
		assert.True(t, response.Success)

		user, found := env.users.FindByID(current.UserID)
		require.True(t, found)
		assert.False(t, user.MFAEnabled)
		assert.Empty(t, user.TOTPSecret)
		assert.Empty(t, user.BackupMethods)

		// Recovery codes die with the MFA state.
		consumed, err := env.users.ConsumeRecoveryCode(current.UserID, backupCodes[0])
		require.NoError(t, err)
		assert.False(t, consumed)
	})

	t.Run("should reject a wrong code and stay enabled", func(t *testing.T) {
		env := newTestEnv(t)
		signupResponse := env.signup(t, "alice@example.com", "alice")
		env.enableMFAFor(t, signupResponse)

		_, err := env.mfa.Disable(zap.NewNop(), sessionFor(signupResponse), nil, models.MFACodeBody{Code: "000000"})
		requireAPIError(t, err, apierrors.ErrInvalidCode)

		user, found := env.users.FindByID(signupResponse.User.ID)
		require.True(t, found)
		assert.True(t, user.MFAEnabled)
	})

	t.Run("should reject when MFA is not enabled", func(t *testing.T) {
		env := newTestEnv(t)
		current := sessionFor(env.signup(t, "alice@example.com", "alice"))

		_, err := env.mfa.Disable(zap.NewNop(), current, nil, models.MFACodeBody{Code: "123456"})
		requireAPIError(t, err, apierrors.ErrMFANotEnabled)
	})
}

func TestRegenerateRecoveryCodes(t *testing.T) {
	t.Run("should replace the active set atomically", func(t *testing.T) {
		env := newTestEnv(t)
		signupResponse := env.signup(t, "alice@example.com", "alice")
		_, oldCodes := env.enableMFAFor(t, signupResponse)
		current := sessionFor(signupResponse)

		response, err := env.mfa.RegenerateRecoveryCodes(zap.NewNop(), current, nil)
		require.NoError(t, err)
		assert.Len(t, response.Codes, configuration.RecoveryCodeCount)

		consumed, err := env.users.ConsumeRecoveryCode(current.UserID, oldCodes[0])
		require.NoError(t, err)
		assert.False(t, consumed, "old codes stop working immediately")

		consumed, err = env.users.ConsumeRecoveryCode(current.UserID, response.Codes[0])
		require.NoError(t, err)
		assert.True(t, consumed)
	})

	t.Run("should reject when MFA is not enabled", func(t *testing.T) {
		env := newTestEnv(t)
		current := sessionFor(env.signup(t, "alice@example.com", "alice"))

		_, err := env.mfa.RegenerateRecoveryCodes(zap.NewNop(), current, nil)
		requireAPIError(t, err, apierrors.ErrMFANotEnabled)
	})
}
