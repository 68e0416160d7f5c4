package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ChallengeClaims is the payload of the short-lived MFA challenge token
// issued when a password check succeeds for a user with MFA enabled. The
// token is the only handle on the pending challenge: it is scoped to a
// single user, carries the methods available to complete the challenge, and
// expires after a few minutes. Failed verifications leave it valid so the
// user can retry.
type ChallengeClaims struct {
	UserID  uuid.UUID      `json:"user_id"`
	Email   string         `json:"email"`
	Aud     string         `json:"aud"`
	Issuer  string         `json:"iss"`
	Methods []BackupMethod `json:"methods"`
	jwt.RegisteredClaims
}
