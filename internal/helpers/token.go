package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"api/internal/configuration"
	"api/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// NewSessionToken mints an unguessable session identifier with 128 bits of
// entropy, hex encoded.
func NewSessionToken() (string, error) {
	buf := make([]byte, configuration.SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewChallengeToken creates the signed MFA challenge token returned from a
// password-verified login. It is the handle on the pending challenge: scoped
// to one user, listing the methods that can complete it, expiring after
// expiryMinutes.
func NewChallengeToken(
	jwtSecret string,
	user *models.User,
	methods []models.BackupMethod,
	expiryMinutes int,
) (string, error) {
	claims := models.ChallengeClaims{
		UserID:  user.ID,
		Email:   user.Email,
		Aud:     configuration.AudienceMFAChallenge,
		Issuer:  configuration.AppName,
		Methods: methods,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  &jwt.NumericDate{Time: time.Now()},
			ExpiresAt: &jwt.NumericDate{Time: time.Now().Add(time.Minute * time.Duration(expiryMinutes))},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ParseChallengeToken validates signature, expiry and audience of a
// challenge token.
func ParseChallengeToken(jwtSecret string, tokenString string) (models.ChallengeClaims, error) {
	claims := &models.ChallengeClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		},
	)
	if err != nil {
		return models.ChallengeClaims{}, errors.New("invalid challenge token")
	}

	if claims.Aud != configuration.AudienceMFAChallenge {
		return models.ChallengeClaims{}, errors.New("invalid challenge token audience")
	}

	return *claims, nil
}

// ExtractBearerToken pulls the token out of an Authorization header.
func ExtractBearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimPrefix(header, "Bearer "), nil
}
