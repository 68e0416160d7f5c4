package store

import (
	"regexp"
	"testing"

	apierrors "api/internal/errors"
	"api/internal/helpers"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*UserStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewUserStore(gormDB), mock
}

func TestUserStoreQueries(t *testing.T) {
	t.Run("should compare emails case-insensitively in the generated query", func(t *testing.T) {
		users, mock := newMockStore(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE LOWER(email) = LOWER($1)`)).
			WithArgs("Someone@Example.com", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

		_, found := users.FindByEmail("Someone@Example.com")
		assert.False(t, found)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should consume a recovery code with a single conditional delete", func(t *testing.T) {
		users, mock := newMockStore(t)
		userID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "recovery_codes" WHERE user_id = $1 AND code_hash = $2 AND pending = $3`)).
			WithArgs(userID, helpers.HashRecoveryCode("AAAA-BBBB"), false).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		consumed, err := users.ConsumeRecoveryCode(userID, "AAAA-BBBB")
		require.NoError(t, err)
		assert.True(t, consumed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should report an unconsumed code when the delete matches nothing", func(t *testing.T) {
		users, mock := newMockStore(t)
		userID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "recovery_codes"`)).
			WithArgs(userID, helpers.HashRecoveryCode("AAAA-BBBB"), false).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		consumed, err := users.ConsumeRecoveryCode(userID, "AAAA-BBBB")
		require.NoError(t, err)
		assert.False(t, consumed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should count only active recovery codes", func(t *testing.T) {
		users, mock := newMockStore(t)
		userID := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "recovery_codes" WHERE user_id = $1 AND pending = $2`)).
			WithArgs(userID, false).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := users.CountActiveRecoveryCodes(userID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should return not found when updating a missing user", func(t *testing.T) {
		users, mock := newMockStore(t)
		userID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := users.Update(userID, map[string]any{"bio": "hello"})
		require.Error(t, err)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 404, apiErr.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
