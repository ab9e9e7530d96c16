package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

func newAttendanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAttendanceRepositoryMark(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM registrations WHERE id = $1 FOR UPDATE")).
		WithArgs("reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.RegistrationStatusConfirmed))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance")).
		WithArgs(sqlmock.AnyArg(), "reg-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("att-1"))
	mock.ExpectCommit()

	attendance, err := repo.Mark(context.Background(), "reg-1")
	require.NoError(t, err)
	require.Equal(t, "reg-1", attendance.RegistrationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryMarkRejectsWaitlisted(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM registrations WHERE id = $1 FOR UPDATE")).
		WithArgs("reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.RegistrationStatusWaitlisted))
	mock.ExpectRollback()

	_, err := repo.Mark(context.Background(), "reg-1")
	require.ErrorIs(t, err, appErrors.ErrInvalidState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryMarkRejectsDuplicate(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM registrations WHERE id = $1 FOR UPDATE")).
		WithArgs("reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.RegistrationStatusConfirmed))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance")).
		WithArgs(sqlmock.AnyArg(), "reg-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Mark(context.Background(), "reg-1")
	require.ErrorIs(t, err, appErrors.ErrDuplicateAttendance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryMarkUnknownRegistration(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM registrations WHERE id = $1 FOR UPDATE")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	_, err := repo.Mark(context.Background(), "missing")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
