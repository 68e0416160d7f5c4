package services

import (
	"api/internal/activity"
	"api/internal/configuration"
	apierrors "api/internal/errors"
	"api/internal/events"
	"api/internal/handlers"
	h "api/internal/helpers"
	"api/internal/messaging"
	"api/internal/mfa"
	m "api/internal/middlewares"
	"api/internal/models"
	"api/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MFAService struct {
	Users          *store.UserStore
	AuthConfig     models.AuthConfig
	Verifier       *mfa.Verifier
	Publisher      messaging.IPublisher
	ActivityLogger activity.IActivityLogger
}

func (s MFAService) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/setup", handlers.GetHandler(s.Setup))
	r.With(m.Validate[models.MFACodeBody]).Post("/enable", handlers.CreateHandler(s.Enable))
	r.With(m.Validate[models.MFACodeBody]).Post("/disable", handlers.CreateHandler(s.Disable))
	r.Post("/recovery-codes", handlers.GetHandler(s.RegenerateRecoveryCodes))
	return r
}

// Setup stages a fresh TOTP secret and recovery code set for the user. The
// plaintext secret and codes appear only in this response; the store keeps
// the secret encrypted and the codes hashed, both marked pending. Repeating
// setup discards the previous pending state.
func (s MFAService) Setup(
	logger *zap.Logger,
	current models.Session,
	_ uuid.UUIDs,
) (models.MFASetupResponse, error) {
	user, found := s.Users.FindByID(current.UserID)
	if !found {
		return models.MFASetupResponse{}, apierrors.NewAPIError(401, apierrors.ErrNotAuthenticated)
	}
	if user.MFAEnabled {
		return models.MFASetupResponse{}, apierrors.NewAPIError(400, apierrors.ErrMFAAlreadyEnabled)
	}

	key, err := h.GenerateTOTPSecret(user.Email)
	if err != nil {
		logger.Error("Failed to generate TOTP secret", zap.Error(err))
		return models.MFASetupResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	encryptedSecret, err := h.EncryptSecret(key.Secret, []byte(s.AuthConfig.MFAEncryptionKey))
	if err != nil {
		logger.Error("Failed to encrypt TOTP secret", zap.Error(err))
		return models.MFASetupResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	codes, err := h.GenerateRecoveryCodes(configuration.RecoveryCodeCount)
	if err != nil {
		logger.Error("Failed to generate recovery codes", zap.Error(err))
		return models.MFASetupResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}
	hashes := make([]string, len(codes))
	for i, code := range codes {
		hashes[i] = h.HashRecoveryCode(code)
	}

	if err = s.Users.StageMFASetup(user.ID, encryptedSecret, hashes); err != nil {
		logger.Error("Failed to stage MFA setup", zap.Error(err))
		return models.MFASetupResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	qrImage, err := h.GenerateQRCodeDataURL(key.URL)
	if err != nil {
		logger.Error("Failed to render provisioning QR code", zap.Error(err))
		return models.MFASetupResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	return models.MFASetupResponse{
		Secret:      key.Secret,
		QRCodeURI:   key.URL,
		QRCodeImage: qrImage,
		BackupCodes: codes,
		Issuer:      configuration.AppName,
	}, nil
}

// Enable confirms the staged secret with a live code and switches MFA on.
// The pending secret and codes become the active ones in one transaction.
func (s MFAService) Enable(
	logger *zap.Logger,
	current models.Session,
	_ uuid.UUIDs,
	body models.MFACodeBody,
) (models.MFAStatusResponse, error) {
	user, found := s.Users.FindByID(current.UserID)
	if !found {
		return models.MFAStatusResponse{}, apierrors.NewAPIError(401, apierrors.ErrNotAuthenticated)
	}
	if user.MFAEnabled {
		return models.MFAStatusResponse{}, apierrors.NewAPIError(400, apierrors.ErrMFAAlreadyEnabled)
	}
	if user.PendingTOTPSecret == "" {
		return models.MFAStatusResponse{}, apierrors.NewAPIError(400, apierrors.ErrMFASetupRequired)
	}

	valid, err := s.Verifier.VerifyTOTPSecret(user.PendingTOTPSecret, body.Code)
	if err != nil {
		logger.Error("Failed to verify enable code", zap.Error(err))
		return models.MFAStatusResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}
	if !valid {
		return models.MFAStatusResponse{}, apierrors.NewAPIError(401, apierrors.ErrInvalidCode)
	}

	methods := []models.BackupMethod{models.BackupMethodTOTP, models.BackupMethodRecovery}
	if user.PhoneNumber != "" {
		methods = append(methods, models.BackupMethodSMS)
	}

	if err = s.Users.EnableMFA(user.ID, methods); err != nil {
		return models.MFAStatusResponse{}, err
	}

	events.NewMFAEnabled(s.Publisher, user.Email, user.Username, s.AuthConfig.WebURL).Trigger()
	s.logActivity(logger, user, configuration.ActivityMFAEnabled, "MFA enabled")

	return models.MFAStatusResponse{Success: true}, nil
}

// Disable requires a live code from the enabled secret, then clears all MFA
// state: secret, pending setup leftovers, recovery codes, backup methods.
func (s MFAService) Disable(
	logger *zap.Logger,
	current models.Session,
	_ uuid.UUIDs,
	body models.MFACodeBody,
) (models.MFAStatusResponse, error) {
	user, found := s.Users.FindByID(current.UserID)
	if !found {
		return models.MFAStatusResponse{}, apierrors.NewAPIError(401, apierrors.ErrNotAuthenticated)
	}
	if !user.MFAEnabled {
		return models.MFAStatusResponse{}, apierrors.NewAPIError(400, apierrors.ErrMFANotEnabled)
	}

	valid, err := s.Verifier.VerifyTOTPSecret(user.TOTPSecret, body.Code)
	if err != nil {
		logger.Error("Failed to verify disable code", zap.Error(err))
		return models.MFAStatusResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}
	if !valid {
		return models.MFAStatusResponse{}, apierrors.NewAPIError(401, apierrors.ErrInvalidCode)
	}

	if err = s.Users.DisableMFA(user.ID); err != nil {
		return models.MFAStatusResponse{}, err
	}

	events.NewMFADisabled(s.Publisher, user.Email, user.Username, s.AuthConfig.WebURL).Trigger()
	s.logActivity(logger, user, configuration.ActivityMFADisabled, "MFA disabled")

	return models.MFAStatusResponse{Success: true}, nil
}

// RegenerateRecoveryCodes replaces the active set atomically. Codes from the
// previous set stop working the moment the new set is committed.
func (s MFAService) RegenerateRecoveryCodes(
	logger *zap.Logger,
	current models.Session,
	_ uuid.UUIDs,
) (models.RecoveryCodesResponse, error) {
	user, found := s.Users.FindByID(current.UserID)
	if !found {
		return models.RecoveryCodesResponse{}, apierrors.NewAPIError(401, apierrors.ErrNotAuthenticated)
	}
	if !user.MFAEnabled {
		return models.RecoveryCodesResponse{}, apierrors.NewAPIError(400, apierrors.ErrMFANotEnabled)
	}

	codes, err := h.GenerateRecoveryCodes(configuration.RecoveryCodeCount)
	if err != nil {
		logger.Error("Failed to generate recovery codes", zap.Error(err))
		return models.RecoveryCodesResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}
	hashes := make([]string, len(codes))
	for i, code := range codes {
		hashes[i] = h.HashRecoveryCode(code)
	}

	if err = s.Users.ReplaceRecoveryCodes(user.ID, hashes); err != nil {
		logger.Error("Failed to replace recovery codes", zap.Error(err))
		return models.RecoveryCodesResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	events.NewRecoveryCodesRegenerated(s.Publisher, user.Email, user.Username, s.AuthConfig.WebURL).Trigger()
	s.logActivity(logger, user, configuration.ActivityRecoveryCodesRegenerated, "Recovery codes regenerated")

	return models.RecoveryCodesResponse{Codes: codes}, nil
}

func (s MFAService) logActivity(logger *zap.Logger, user *models.User, action string, message string) {
	entry := models.Activity{
		Message: message,
		Object:  user.ToActivity(),
		Filter: map[string]string{
			"action":      action,
			"user_id":     user.ID.String(),
			"object_type": "user",
		},
	}
	if err := s.ActivityLogger.Send(entry); err != nil {
		logger.Error("Failed to log activity", zap.String("action", action), zap.Error(err))
	}
}
