package sms

// IProvider delivers and checks SMS one-time codes. The stub provider keeps
// codes in the cache instead of dispatching real messages; a gateway-backed
// implementation would satisfy the same interface.
type IProvider interface {
	// SendCode generates and stages a fresh code for the user.
	SendCode(userID string) error
	// VerifyCode consumes the staged code. A match is single-use.
	VerifyCode(userID string, code string) (bool, error)
}
