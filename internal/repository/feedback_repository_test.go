package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

func newFeedbackRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestFeedbackRepositorySubmit(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM attendance WHERE id = $1 FOR UPDATE")).
		WithArgs("att-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO feedback")).
		WithArgs(sqlmock.AnyArg(), "att-1", 5, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("fb-1"))
	mock.ExpectCommit()

	feedback, err := repo.Submit(context.Background(), "att-1", 5, nil)
	require.NoError(t, err)
	require.Equal(t, 5, feedback.Rating)
	require.Equal(t, "att-1", feedback.AttendanceID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositorySubmitRejectsDuplicate(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM attendance WHERE id = $1 FOR UPDATE")).
		WithArgs("att-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO feedback")).
		WithArgs(sqlmock.AnyArg(), "att-1", 4, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Submit(context.Background(), "att-1", 4, nil)
	require.ErrorIs(t, err, appErrors.ErrDuplicateFeedback)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositorySubmitUnknownAttendance(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM attendance WHERE id = $1 FOR UPDATE")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	_, err := repo.Submit(context.Background(), "missing", 3, nil)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
