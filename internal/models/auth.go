package models

import "github.com/google/uuid"

// AuthUser is the authenticated user view exposed to the rest of the app.
type AuthUser struct {
	ID               uuid.UUID      `json:"id"`
	Email            string         `json:"email"`
	Username         string         `json:"username"`
	DisplayName      string         `json:"display_name"`
	Avatar           string         `json:"avatar,omitempty"`
	MFAEnabled       bool           `json:"mfa_enabled"`
	MFASetupRequired bool           `json:"mfa_setup_required"`
	BackupMethods    []BackupMethod `json:"backup_methods"`
}

type AuthLoginBody struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// AuthLoginResponse is returned by login, signup and MFA verification.
// When RequiresMFA is set, ChallengeToken carries the pending challenge and
// Methods lists the second factors the user may complete it with.
type AuthLoginResponse struct {
	Success        bool           `json:"success"`
	User           *AuthUser      `json:"user,omitempty"`
	SessionToken   string         `json:"session_token,omitempty"`
	RequiresMFA    bool           `json:"requires_mfa,omitempty"`
	ChallengeToken string         `json:"challenge_token,omitempty"`
	Methods        []BackupMethod `json:"methods,omitempty"`
}

type AuthSignupBody struct {
	Email       string `json:"email"        validate:"required,email,max=254"`
	Password    string `json:"password"     validate:"required,min=8,max=72"`
	Username    string `json:"username"     validate:"required,min=3,max=30,alphanum"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
}

// AuthSessionResponse rehydrates the current user. RecoveryCodesRemaining is
// only populated for MFA-enabled accounts, so the settings screen can warn
// when a user is running low on backup codes.
type AuthSessionResponse struct {
	User                   AuthUser `json:"user"`
	RecoveryCodesRemaining int64    `json:"recovery_codes_remaining,omitempty"`
}
