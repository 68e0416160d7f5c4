package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupMethod is a second-factor kind enabled for a user.
type BackupMethod string

const (
	BackupMethodTOTP     BackupMethod = "totp"
	BackupMethodSMS      BackupMethod = "sms"
	BackupMethodRecovery BackupMethod = "recovery"
)

// User is the credential record owned by the user store.
//
// TOTP secrets are stored encrypted (AES-256-GCM). The secret staged by MFA
// setup lives in PendingTOTPSecret and never satisfies a login challenge;
// it is promoted to TOTPSecret only when EnableMFA confirms a valid code.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primarykey;default:gen_random_uuid()" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null"                           json:"email"`
	Username       string    `gorm:"uniqueIndex;not null"                           json:"username"`
	DisplayName    string    `gorm:"not null"                                       json:"display_name"`
	AvatarURL      string    `                                                      json:"avatar"`
	Bio            string    `                                                      json:"bio"`
	PhoneNumber    string    `                                                      json:"-"`
	HashedPassword string    `gorm:"not null"                                       json:"-"`

	MFAEnabled        bool           `gorm:"not null;default:false"  json:"mfa_enabled"`
	TOTPSecret        string         `                               json:"-"`
	PendingTOTPSecret string         `                               json:"-"`
	BackupMethods     []BackupMethod `gorm:"serializer:json"         json:"backup_methods"`

	Verified       bool `gorm:"not null;default:false" json:"verified"`
	FollowersCount int  `gorm:"not null;default:0"     json:"followers"`
	FollowingCount int  `gorm:"not null;default:0"     json:"following"`

	RecoveryCodes []RecoveryCode `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time      `json:"join_date"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasBackupMethod reports whether the given second-factor kind is enabled.
func (u *User) HasBackupMethod(method BackupMethod) bool {
	for _, m := range u.BackupMethods {
		if m == method {
			return true
		}
	}
	return false
}

// ToAuthUser converts a stored user into the shape returned to callers.
func (u *User) ToAuthUser() AuthUser {
	methods := u.BackupMethods
	if methods == nil {
		methods = []BackupMethod{}
	}
	return AuthUser{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		DisplayName:      u.DisplayName,
		Avatar:           u.AvatarURL,
		MFAEnabled:       u.MFAEnabled,
		MFASetupRequired: !u.MFAEnabled,
		BackupMethods:    methods,
	}
}

// ToActivity returns the subset of user fields recorded in the activity log.
func (u *User) ToActivity() map[string]string {
	return map[string]string{
		"id":       u.ID.String(),
		"email":    u.Email,
		"username": u.Username,
	}
}

// RecoveryCode is a single-use backup credential. Only the SHA-256 hash of
// the code is stored; consumption deletes the row, it is never marked used.
// Pending rows are staged by MFA setup and promoted when MFA is enabled.
type RecoveryCode struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CodeHash  string    `gorm:"not null;index"`
	Pending   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (c *RecoveryCode) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
