package apierrors

// Authentication failures. The same code is returned for an unknown email
// and a wrong password so callers cannot enumerate accounts.
const (
	ErrInvalidCredentials = "INVALID_CREDENTIALS"
	ErrNotAuthenticated   = "NOT_AUTHENTICATED"
)

// Signup conflicts, naming the conflicting field.
const (
	ErrDuplicateEmail    = "DUPLICATE_EMAIL"
	ErrDuplicateUsername = "DUPLICATE_USERNAME"
)

// MFA failures. InvalidCode covers TOTP, SMS and recovery paths uniformly;
// the internal reason is logged but never surfaced.
const (
	ErrInvalidCode        = "INVALID_CODE"
	ErrNoPendingChallenge = "NO_PENDING_CHALLENGE"
	ErrMFANotEnabled      = "MFA_NOT_ENABLED"
	ErrMFAAlreadyEnabled  = "MFA_ALREADY_ENABLED"
	ErrMFASetupRequired   = "MFA_SETUP_NOT_INITIATED"
)

const ErrInternal = "INTERNAL_SERVER_ERROR"
