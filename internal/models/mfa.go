package models

// MFAVerifyBody is used to complete a pending MFA challenge during login.
type MFAVerifyBody struct {
	ChallengeToken string       `json:"challenge_token" validate:"required,max=2048"`
	Method         BackupMethod `json:"method"          validate:"required,oneof=totp sms recovery"`
	Code           string       `json:"code"            validate:"required,min=6,max=8"`
}

// MFASendSMSBody requests a one-time code from the SMS provider for a
// pending challenge.
type MFASendSMSBody struct {
	ChallengeToken string `json:"challenge_token" validate:"required,max=2048"`
}

// MFASetupResponse is returned when MFA setup is initiated. BackupCodes are
// shown exactly once; only their hashes are retained.
type MFASetupResponse struct {
	Secret      string   `json:"secret"`
	QRCodeURI   string   `json:"qr_code_uri"`
	QRCodeImage string   `json:"qr_code_image"`
	BackupCodes []string `json:"backup_codes"`
	Issuer      string   `json:"issuer"`
}

// MFACodeBody carries a 6-digit TOTP code for enable/disable operations.
type MFACodeBody struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type MFAStatusResponse struct {
	Success bool `json:"success"`
}

type RecoveryCodesResponse struct {
	Codes []string `json:"codes"`
}
