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
	"api/internal/session"
	"api/internal/sms"
	"api/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	Users          *store.UserStore
	Sessions       *session.Manager
	AuthConfig     models.AuthConfig
	Verifier       *mfa.Verifier
	SMS            sms.IProvider
	Publisher      messaging.IPublisher
	ActivityLogger activity.IActivityLogger
}

// PublicRoutes are reachable without a session: login and the MFA challenge
// completion flow, which runs between the password check and the session.
func (s AuthService) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.With(m.Validate[models.AuthLoginBody]).Post("/login", handlers.CreateHandler(s.Login))
	r.With(m.Validate[models.AuthSignupBody]).Post("/signup", handlers.CreateHandler(s.Signup))

	r.Route("/mfa", func(r chi.Router) {
		r.With(m.Validate[models.MFAVerifyBody]).
			Post("/verify", handlers.CreateHandler(s.VerifyMFA))
		r.With(m.Validate[models.MFASendSMSBody]).
			Post("/send-sms", handlers.CreateHandler(s.SendSMSCode))
	})
	return r
}

// Routes require an authenticated session.
func (s AuthService) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/session", handlers.GetHandler(s.Session))
	r.Get("/activity", handlers.GetHandler(s.Activity))
	r.Post("/logout", handlers.GetHandler(s.Logout))
	return r
}

// Login checks the password and either opens a session or, for MFA-enabled
// accounts, returns a challenge token. Unknown email and wrong password are
// indistinguishable in both the response and the latency profile.
func (s AuthService) Login(
	logger *zap.Logger,
	_ models.Session,
	_ uuid.UUIDs,
	body models.AuthLoginBody,
) (models.AuthLoginResponse, error) {
	user, found := s.Users.FindByEmail(body.Email)
	if !found {
		h.CompareDummyPassword(body.Password)
		return models.AuthLoginResponse{}, apierrors.NewAPIError(401, apierrors.ErrInvalidCredentials)
	}

	if !h.ComparePassword(body.Password, user.HashedPassword) {
		return models.AuthLoginResponse{}, apierrors.NewAPIError(401, apierrors.ErrInvalidCredentials)
	}

	if user.MFAEnabled {
		return mfa.HandleMFALogin(logger, s.AuthConfig, user)
	}

	response, err := s.openSession(logger, user, "password")
	if err != nil {
		return models.AuthLoginResponse{}, err
	}
	return response, nil
}

// Signup creates the account and opens a session immediately. The response
// carries mfa_setup_required so clients route new users into MFA setup.
func (s AuthService) Signup(
	logger *zap.Logger,
	_ models.Session,
	_ uuid.UUIDs,
	body models.AuthSignupBody,
) (models.AuthLoginResponse, error) {
	hashedPassword, err := h.CreateHash(body.Password)
	if err != nil {
		logger.Error("Failed to hash password", zap.Error(err))
		return models.AuthLoginResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	user := models.User{
		Email:          body.Email,
		Username:       body.Username,
		DisplayName:    body.DisplayName,
		HashedPassword: hashedPassword,
	}
	if err = s.Users.Insert(&user); err != nil {
		return models.AuthLoginResponse{}, err
	}

	events.NewUserWelcome(s.Publisher, user.Email, user.Username, s.AuthConfig.WebURL).Trigger()

	s.logActivity(logger, &user, configuration.ActivityUserSignedUp, "User signed up", "")

	return s.openSession(logger, &user, "signup")
}

// VerifyMFA completes a pending challenge. The challenge token stays valid
// for retry after a wrong code; only its expiry ends the flow. All failure
// modes inside the verification are collapsed into one error code.
func (s AuthService) VerifyMFA(
	logger *zap.Logger,
	_ models.Session,
	_ uuid.UUIDs,
	body models.MFAVerifyBody,
) (models.AuthLoginResponse, error) {
	claims, err := h.ParseChallengeToken(s.AuthConfig.JWTSecret, body.ChallengeToken)
	if err != nil {
		return models.AuthLoginResponse{}, apierrors.NewAPIError(401, apierrors.ErrNoPendingChallenge)
	}

	user, found := s.Users.FindByID(claims.UserID)
	if !found || !user.MFAEnabled {
		return models.AuthLoginResponse{}, apierrors.NewAPIError(401, apierrors.ErrNoPendingChallenge)
	}

	valid, err := s.Verifier.Verify(user, body.Method, body.Code)
	if err != nil {
		logger.Error("Failed to verify second factor", zap.Error(err))
		return models.AuthLoginResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}
	if !valid {
		s.logActivity(logger, user, configuration.ActivityMFAChallengeFailed,
			"MFA challenge failed", string(body.Method))
		return models.AuthLoginResponse{}, apierrors.NewAPIError(401, apierrors.ErrInvalidCode)
	}

	return s.openSession(logger, user, string(body.Method))
}

// SendSMSCode stages a one-time code for a pending challenge. Only valid
// challenge tokens naming a user with the sms method can trigger a send.
func (s AuthService) SendSMSCode(
	logger *zap.Logger,
	_ models.Session,
	_ uuid.UUIDs,
	body models.MFASendSMSBody,
) (models.MFAStatusResponse, error) {
	claims, err := h.ParseChallengeToken(s.AuthConfig.JWTSecret, body.ChallengeToken)
	if err != nil {
		return models.MFAStatusResponse{}, apierrors.NewAPIError(401, apierrors.ErrNoPendingChallenge)
	}

	user, found := s.Users.FindByID(claims.UserID)
	if !found || !user.HasBackupMethod(models.BackupMethodSMS) {
		return models.MFAStatusResponse{}, apierrors.NewAPIError(400, "SMS_NOT_AVAILABLE")
	}

	if err = s.SMS.SendCode(user.ID.String()); err != nil {
		logger.Error("Failed to send SMS code", zap.Error(err))
		return models.MFAStatusResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	return models.MFAStatusResponse{Success: true}, nil
}

// Session rehydrates the current user from the session token. MFA-enabled
// accounts also get their remaining recovery code count.
func (s AuthService) Session(
	logger *zap.Logger,
	current models.Session,
	_ uuid.UUIDs,
) (models.AuthSessionResponse, error) {
	user, found := s.Users.FindByID(current.UserID)
	if !found {
		return models.AuthSessionResponse{}, apierrors.NewAPIError(401, apierrors.ErrNotAuthenticated)
	}

	response := models.AuthSessionResponse{User: user.ToAuthUser()}
	if user.MFAEnabled {
		remaining, err := s.Users.CountActiveRecoveryCodes(user.ID)
		if err != nil {
			logger.Error("Failed to count recovery codes", zap.Error(err))
			return models.AuthSessionResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
		}
		response.RecoveryCodesRemaining = remaining
	}
	return response, nil
}

// Activity returns the caller's recent security events plus a per-day count
// over the last month, both scoped to the caller's user id.
func (s AuthService) Activity(
	logger *zap.Logger,
	current models.Session,
	_ uuid.UUIDs,
) (models.AccountActivityResponse, error) {
	criteria := map[string][]string{"user_id": {current.UserID.String()}}

	entries, err := s.ActivityLogger.Search(criteria)
	if err != nil {
		logger.Error("Failed to search activity log", zap.Error(err))
		return models.AccountActivityResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	daily, err := s.ActivityLogger.CountByDay(criteria, 30)
	if err != nil {
		logger.Error("Failed to aggregate activity log", zap.Error(err))
		return models.AccountActivityResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	if entries == nil {
		entries = []map[string]any{}
	}
	return models.AccountActivityResponse{Entries: entries, Daily: daily}, nil
}

// Logout destroys the session. Outstanding challenge tokens are not
// revocable; they die with their expiry.
func (s AuthService) Logout(
	logger *zap.Logger,
	current models.Session,
	_ uuid.UUIDs,
) (models.MFAStatusResponse, error) {
	if err := s.Sessions.Destroy(current.SessionID); err != nil {
		logger.Error("Failed to destroy session", zap.Error(err))
		return models.MFAStatusResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	if user, found := s.Users.FindByID(current.UserID); found {
		s.logActivity(logger, user, configuration.ActivityUserLoggedOut, "User logged out", "")
	}

	return models.MFAStatusResponse{Success: true}, nil
}

func (s AuthService) openSession(
	logger *zap.Logger,
	user *models.User,
	method string,
) (models.AuthLoginResponse, error) {
	newSession, err := s.Sessions.Create(user.ID)
	if err != nil {
		logger.Error("Failed to create session", zap.Error(err))
		return models.AuthLoginResponse{}, apierrors.NewAPIError(500, apierrors.ErrInternal)
	}

	if method != "signup" {
		s.logActivity(logger, user, configuration.ActivityUserLoggedIn, "User logged in", method)
	}

	authUser := user.ToAuthUser()
	return models.AuthLoginResponse{
		Success:      true,
		User:         &authUser,
		SessionToken: newSession.SessionID,
	}, nil
}

func (s AuthService) logActivity(
	logger *zap.Logger,
	user *models.User,
	action string,
	message string,
	method string,
) {
	filter := map[string]string{
		"action":      action,
		"user_id":     user.ID.String(),
		"object_type": "user",
	}
	if method != "" {
		filter["method"] = method
	}

	entry := models.Activity{
		Message: message,
		Object:  user.ToActivity(),
		Filter:  filter,
	}
	if err := s.ActivityLogger.Send(entry); err != nil {
		logger.Error("Failed to log activity", zap.String("action", action), zap.Error(err))
	}
}
