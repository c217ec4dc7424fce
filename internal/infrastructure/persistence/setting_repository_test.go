package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockSettingRepository creates a GormSettingRepository with a mocked SQL connection
func newMockSettingRepository(t *testing.T) (*GormSettingRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSettingRepository(&Database{DB: gormDB}), mock, mockDB
}

func TestGormSettingRepository_Get(t *testing.T) {
	t.Run("returns stored value", func(t *testing.T) {
		repo, mock, mockDB := newMockSettingRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"key", "value"}).
			AddRow("closed_semester_periods", "S2-2627,S1-2526")

		mock.ExpectQuery(`SELECT \* FROM "settings" WHERE key = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("closed_semester_periods", 1).
			WillReturnRows(rows)

		value, err := repo.Get(context.Background(), "closed_semester_periods")

		assert.NoError(t, err)
		assert.Equal(t, "S2-2627,S1-2526", value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent key yields empty string, not an error", func(t *testing.T) {
		repo, mock, mockDB := newMockSettingRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "settings" WHERE key = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("semester_active_periods", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		value, err := repo.Get(context.Background(), "semester_active_periods")

		assert.NoError(t, err)
		assert.Empty(t, value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database failure propagates", func(t *testing.T) {
		repo, mock, mockDB := newMockSettingRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "settings"`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.Get(context.Background(), "semester_period_options")

		assert.Error(t, err)
	})
}

func TestGormSettingRepository_Update(t *testing.T) {
	t.Run("locks the row and persists the mutated value", func(t *testing.T) {
		repo, mock, mockDB := newMockSettingRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"key", "value"}).
			AddRow("closed_semester_periods", "S1-2526")

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "settings" WHERE key = \$1 .* FOR UPDATE`).
			WithArgs("closed_semester_periods", 1).
			WillReturnRows(rows)
		mock.ExpectExec(`UPDATE "settings" SET .* WHERE key = \$`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Update(context.Background(), "closed_semester_periods", func(current string) (string, error) {
			assert.Equal(t, "S1-2526", current)
			return "S2-2627,S1-2526", nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates the row when the key is absent", func(t *testing.T) {
		repo, mock, mockDB := newMockSettingRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "settings" WHERE key = \$1 .* FOR UPDATE`).
			WithArgs("semester_active_periods", 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectExec(`INSERT INTO "settings"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Update(context.Background(), "semester_active_periods", func(current string) (string, error) {
			assert.Empty(t, current)
			return "S1-2627", nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips the write when the value is unchanged", func(t *testing.T) {
		repo, mock, mockDB := newMockSettingRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"key", "value"}).
			AddRow("closed_semester_periods", "S1-2526")

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "settings" WHERE key = \$1 .* FOR UPDATE`).
			WithArgs("closed_semester_periods", 1).
			WillReturnRows(rows)
		mock.ExpectCommit()

		err := repo.Update(context.Background(), "closed_semester_periods", func(current string) (string, error) {
			return current, nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mutate failure rolls back", func(t *testing.T) {
		repo, mock, mockDB := newMockSettingRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"key", "value"}).
			AddRow("closed_semester_periods", "S1-2526")

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "settings" WHERE key = \$1 .* FOR UPDATE`).
			WithArgs("closed_semester_periods", 1).
			WillReturnRows(rows)
		mock.ExpectRollback()

		err := repo.Update(context.Background(), "closed_semester_periods", func(string) (string, error) {
			return "", errors.New("unserializable entry")
		})

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
