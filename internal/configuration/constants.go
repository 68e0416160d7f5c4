package configuration

const AppName = "socialhub"

// JWT audience for the MFA challenge token issued between the password check
// and second-factor completion.
const AudienceMFAChallenge = "auth:mfa:challenge"

// Default token and session parameters.
const (
	// ChallengeExpiry is the MFA challenge token lifetime in minutes.
	ChallengeExpiry = 5
	// SessionTokenBytes is the entropy of a session identifier (128 bits).
	SessionTokenBytes = 16
)

// TOTP parameters (RFC 6238; 30-second step, 6 digits).
const (
	TOTPSecretSize = 20
	TOTPDigits     = 6
	TOTPPeriod     = 30
	// TOTPSkew is the accepted clock-drift tolerance in steps, either side.
	TOTPSkew = 2
	// TOTPCodeTTL is the replay-protection TTL for a used code (in seconds).
	TOTPCodeTTL = 90
)

// Recovery code parameters.
const (
	RecoveryCodeCount  = 10
	RecoveryCodeLength = 8
)

// SMS stub parameters.
const (
	SMSCodeLength     = 6
	SMSCodeTTLSeconds = 300
)

// Cache key formats.
const (
	CacheSessionKey  = "session:%s"
	CacheTOTPUsedKey = "totp:used:%s:%s"
	CacheSMSCodeKey  = "sms:code:%s"
)

// Event topics.
const EventsNotifications = "notifications"

// Auth activity actions.
const (
	ActivityUserSignedUp             = "user_signed_up"
	ActivityUserLoggedIn             = "user_logged_in"
	ActivityUserLoggedOut            = "user_logged_out"
	ActivityMFAEnabled               = "mfa_enabled"
	ActivityMFADisabled              = "mfa_disabled"
	ActivityMFAChallengeFailed       = "mfa_challenge_failed"
	ActivityRecoveryCodesRegenerated = "recovery_codes_regenerated"
)

var ConfigFileSearchPaths = []string{
	"./config.yaml",
	"templates/config.yaml",
}

var ArrayConfigFields = []string{
	"app.allowed_origins",
	"cache.redis.hosts",
}
