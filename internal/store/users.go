package store

import (
	apierrors "api/internal/errors"
	"api/internal/helpers"
	"api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserStore owns all reads and writes of credential records. Email and
// username lookups are case-insensitive; every mutation touching MFA state
// runs in a transaction so a record is never observed half-updated.
type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{DB: db}
}

func (s *UserStore) FindByEmail(email string) (*models.User, bool) {
	var user models.User
	result := s.DB.Preload("RecoveryCodes").
		Where("LOWER(email) = LOWER(?)", email).
		First(&user)
	if result.RowsAffected != 1 {
		return nil, false
	}
	return &user, true
}

func (s *UserStore) FindByUsername(username string) (*models.User, bool) {
	var user models.User
	result := s.DB.Where("LOWER(username) = LOWER(?)", username).First(&user)
	if result.RowsAffected != 1 {
		return nil, false
	}
	return &user, true
}

func (s *UserStore) FindByID(id uuid.UUID) (*models.User, bool) {
	var user models.User
	result := s.DB.Preload("RecoveryCodes").Where("id = ?", id).First(&user)
	if result.RowsAffected != 1 {
		return nil, false
	}
	return &user, true
}

// Insert creates a new user record. It fails with a duplicate-identity error
// naming the conflicting field when the email or username is already taken,
// compared case-insensitively.
func (s *UserStore) Insert(user *models.User) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.User{}).
			Where("LOWER(email) = LOWER(?)", user.Email).
			Count(&count)
		if count > 0 {
			return apierrors.NewAPIError(409, apierrors.ErrDuplicateEmail)
		}

		tx.Model(&models.User{}).
			Where("LOWER(username) = LOWER(?)", user.Username).
			Count(&count)
		if count > 0 {
			return apierrors.NewAPIError(409, apierrors.ErrDuplicateUsername)
		}

		return tx.Create(user).Error
	})
}

func (s *UserStore) Update(id uuid.UUID, updates map[string]any) error {
	result := s.DB.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apierrors.NewAPIError(404, "USER_NOT_FOUND")
	}
	return nil
}

// StageMFASetup stores the pending encrypted TOTP secret and stages the
// hashed recovery codes generated at setup time. Any previous pending state
// from an abandoned setup is discarded. Nothing staged here satisfies a
// login challenge until EnableMFA promotes it.
func (s *UserStore) StageMFASetup(userID uuid.UUID, encryptedSecret string, codeHashes []string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("pending_totp_secret", encryptedSecret)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apierrors.NewAPIError(404, "USER_NOT_FOUND")
		}

		if err := tx.Where("user_id = ? AND pending = ?", userID, true).
			Delete(&models.RecoveryCode{}).Error; err != nil {
			return err
		}

		return insertCodes(tx, userID, codeHashes, true)
	})
}

// EnableMFA promotes the pending secret and pending recovery codes staged by
// StageMFASetup, replacing any previously active codes, and flips the user
// into the MFA-enabled state with the given backup methods.
func (s *UserStore) EnableMFA(userID uuid.UUID, methods []models.BackupMethod) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", userID).
			First(&user)
		if result.RowsAffected != 1 {
			return apierrors.NewAPIError(404, "USER_NOT_FOUND")
		}
		if user.PendingTOTPSecret == "" {
			return apierrors.NewAPIError(400, apierrors.ErrMFASetupRequired)
		}

		err := tx.Model(&user).
			Select("mfa_enabled", "totp_secret", "pending_totp_secret", "backup_methods").
			Updates(models.User{
				MFAEnabled:    true,
				TOTPSecret:    user.PendingTOTPSecret,
				BackupMethods: methods,
			}).Error
		if err != nil {
			return err
		}

		if err := tx.Where("user_id = ? AND pending = ?", userID, false).
			Delete(&models.RecoveryCode{}).Error; err != nil {
			return err
		}

		return tx.Model(&models.RecoveryCode{}).
			Where("user_id = ? AND pending = ?", userID, true).
			Update("pending", false).Error
	})
}

// DisableMFA clears the enabled secret, any pending setup state, all
// recovery codes and the backup methods in one transaction.
func (s *UserStore) DisableMFA(userID uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Select("mfa_enabled", "totp_secret", "pending_totp_secret", "backup_methods").
			Updates(models.User{BackupMethods: []models.BackupMethod{}})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apierrors.NewAPIError(404, "USER_NOT_FOUND")
		}

		return tx.Where("user_id = ?", userID).Delete(&models.RecoveryCode{}).Error
	})
}

// ReplaceRecoveryCodes atomically swaps the active code set for a fresh one.
// Old codes are invalid the moment the transaction commits.
func (s *UserStore) ReplaceRecoveryCodes(userID uuid.UUID, codeHashes []string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND pending = ?", userID, false).
			Delete(&models.RecoveryCode{}).Error; err != nil {
			return err
		}
		return insertCodes(tx, userID, codeHashes, false)
	})
}

// ConsumeRecoveryCode deletes the matching active code and reports whether
// anything was deleted. The single conditional DELETE makes consumption
// exactly-once under concurrent attempts with the same code.
func (s *UserStore) ConsumeRecoveryCode(userID uuid.UUID, code string) (bool, error) {
	result := s.DB.Where("user_id = ? AND code_hash = ? AND pending = ?",
		userID, helpers.HashRecoveryCode(code), false).
		Delete(&models.RecoveryCode{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountActiveRecoveryCodes returns the number of unused active codes.
func (s *UserStore) CountActiveRecoveryCodes(userID uuid.UUID) (int64, error) {
	var count int64
	result := s.DB.Model(&models.RecoveryCode{}).
		Where("user_id = ? AND pending = ?", userID, false).
		Count(&count)
	return count, result.Error
}

func insertCodes(tx *gorm.DB, userID uuid.UUID, codeHashes []string, pending bool) error {
	for _, hash := range codeHashes {
		code := models.RecoveryCode{
			UserID:   userID,
			CodeHash: hash,
			Pending:  pending,
		}
		if err := tx.Create(&code).Error; err != nil {
			return err
		}
	}
	return nil
}
