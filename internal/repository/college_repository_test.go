package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

func newCollegeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCollegeRepositoryCreateMapsDuplicateCode(t *testing.T) {
	db, mock, cleanup := newCollegeRepoMock(t)
	defer cleanup()
	repo := NewCollegeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO colleges")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "colleges_code_key"})

	err := repo.Create(context.Background(), &models.College{Name: "North Campus", Code: "NORTH"})
	require.ErrorIs(t, err, appErrors.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolationIgnoresOtherCodes(t *testing.T) {
	require.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	require.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	require.False(t, isUniqueViolation(context.DeadlineExceeded))
}
