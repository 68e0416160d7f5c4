package mfa

import (
	"api/internal/cache"
	"api/internal/configuration"
	apierrors "api/internal/errors"
	h "api/internal/helpers"
	"api/internal/models"
	"api/internal/sms"
	"api/internal/store"

	"go.uber.org/zap"
)

// HandleMFALogin builds the login response for a password-verified user who
// still owes a second factor. No session is created; the signed challenge
// token is the only handle on the pending challenge and expires on its own.
func HandleMFALogin(
	logger *zap.Logger,
	authConfig models.AuthConfig,
	user *models.User,
) (models.AuthLoginResponse, error) {
	challengeToken, err := h.NewChallengeToken(
		authConfig.JWTSecret,
		user,
		user.BackupMethods,
		authConfig.ChallengeExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate MFA challenge token", zap.Error(err))
		return models.AuthLoginResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	// The password alone does not authenticate an MFA-enabled account, so
	// the response reports failure until the second factor lands.
	return models.AuthLoginResponse{
		Success:        false,
		RequiresMFA:    true,
		ChallengeToken: challengeToken,
		Methods:        user.BackupMethods,
	}, nil
}

// Verifier checks a submitted second factor against a user's enabled
// methods. Each method is single-use: TOTP codes leave a replay mark for the
// accept window, SMS codes are consumed from the cache, recovery codes are
// deleted on first match.
type Verifier struct {
	Users         *store.UserStore
	Cache         cache.ICache
	SMS           sms.IProvider
	EncryptionKey string
}

// Verify dispatches on the requested method. All rejection paths return
// (false, nil); errors are reserved for infrastructure failures. The caller
// maps both the unknown-method and wrong-code cases to the same client error
// so that responses do not reveal which methods a user has enabled.
func (v *Verifier) Verify(user *models.User, method models.BackupMethod, code string) (bool, error) {
	if !user.HasBackupMethod(method) {
		return false, nil
	}

	switch method {
	case models.BackupMethodTOTP:
		return v.verifyTOTP(user, code)
	case models.BackupMethodSMS:
		return v.SMS.VerifyCode(user.ID.String(), code)
	case models.BackupMethodRecovery:
		return v.verifyRecovery(user, code)
	default:
		return false, nil
	}
}

// VerifyTOTPSecret checks a code against a stored encrypted secret without
// any replay marking. Used for enable and disable confirmations, where the
// secret being proven is not yet (or no longer) part of a login challenge.
func (v *Verifier) VerifyTOTPSecret(encryptedSecret string, code string) (bool, error) {
	if encryptedSecret == "" {
		return false, nil
	}

	secret, err := h.DecryptSecret(encryptedSecret, []byte(v.EncryptionKey))
	if err != nil {
		return false, err
	}

	return h.ValidateTOTPCode(secret, code, configuration.TOTPSkew), nil
}

func (v *Verifier) verifyTOTP(user *models.User, code string) (bool, error) {
	// Known replays are rejected before any decryption or time math.
	used, err := v.Cache.IsTOTPCodeUsed(user.ID.String(), code)
	if err != nil || used {
		return false, err
	}

	valid, err := v.VerifyTOTPSecret(user.TOTPSecret, code)
	if err != nil || !valid {
		return false, err
	}

	// A code that validates but was already accepted inside the drift
	// window is a replay and must fail. The mark is the race arbiter: two
	// concurrent submissions both pass the check above, one wins here.
	fresh, err := v.Cache.MarkTOTPCodeUsed(user.ID.String(), code)
	if err != nil {
		return false, err
	}
	return fresh, nil
}

func (v *Verifier) verifyRecovery(user *models.User, code string) (bool, error) {
	return v.Users.ConsumeRecoveryCode(user.ID, code)
}
