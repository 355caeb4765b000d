package sqlrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

func setupAccessRecordRepository(t testing.TB) (*AccessRecordRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}

	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewAccessRecordRepository(db)

	t.Cleanup(func() {
		db.Close()
	})

	return repo, mock
}

func TestAccessRecordRepository_Save(t *testing.T) {
	accessedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	record := &entity.AccessRecord{
		LinkID:     1,
		AccessedAt: accessedAt,
		IPAddress:  "203.0.113.7",
		UserAgent:  "curl/8.0",
	}

	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupAccessRecordRepository(t)
		errUnknown := errors.New("unknown error")

		mock.ExpectQuery(`INSERT INTO access_records`).
			WithArgs(int64(1), accessedAt, "203.0.113.7", "curl/8.0").
			WillReturnError(errUnknown)

		rec, err := repo.Save(context.Background(), record)

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("link removed", func(t *testing.T) {
		repo, mock := setupAccessRecordRepository(t)

		mock.ExpectQuery(`INSERT INTO access_records`).
			WithArgs(int64(1), accessedAt, "203.0.113.7", "curl/8.0").
			WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolationErrCode})

		rec, err := repo.Save(context.Background(), record)

		assert.ErrorIs(t, err, entity.ErrLinkNotFound)
		assert.Nil(t, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupAccessRecordRepository(t)

		mock.ExpectQuery(`INSERT INTO access_records`).
			WithArgs(int64(1), accessedAt, "203.0.113.7", "curl/8.0").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		rec, err := repo.Save(context.Background(), record)

		assert.NoError(t, err)
		assert.Equal(t, &entity.AccessRecord{
			ID:         7,
			LinkID:     1,
			AccessedAt: accessedAt,
			IPAddress:  "203.0.113.7",
			UserAgent:  "curl/8.0",
		}, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
