package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

// isUniqueViolation reports whether the error is a Postgres unique index
// violation. The pre-insert existence checks race under concurrent writers;
// the unique indexes are the backstop and their violations surface as
// conflicts, not internal errors.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CollegeRepository handles persistence of colleges.
type CollegeRepository struct {
	db *sqlx.DB
}

// NewCollegeRepository constructs the repository.
func NewCollegeRepository(db *sqlx.DB) *CollegeRepository {
	return &CollegeRepository{db: db}
}

// Create persists a new college record.
func (r *CollegeRepository) Create(ctx context.Context, college *models.College) error {
	if college.ID == "" {
		college.ID = uuid.NewString()
	}
	if college.CreatedAt.IsZero() {
		college.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO colleges (id, name, code, location, created_at)
        VALUES (:id, :name, :code, :location, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, college); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "college code already in use")
		}
		return fmt.Errorf("create college: %w", err)
	}
	return nil
}

// FindByID returns a college by its ID.
func (r *CollegeRepository) FindByID(ctx context.Context, id string) (*models.College, error) {
	const query = `SELECT id, name, code, location, created_at FROM colleges WHERE id = $1`
	var college models.College
	if err := r.db.GetContext(ctx, &college, query, id); err != nil {
		return nil, err
	}
	return &college, nil
}

// ExistsByCode checks whether a college already uses the code.
func (r *CollegeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM colleges WHERE code = $1 LIMIT 1`, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check college code: %w", err)
	}
	return true, nil
}

// List returns all colleges ordered by name.
func (r *CollegeRepository) List(ctx context.Context) ([]models.College, error) {
	const query = `SELECT id, name, code, location, created_at FROM colleges ORDER BY name`
	var colleges []models.College
	if err := r.db.SelectContext(ctx, &colleges, query); err != nil {
		return nil, fmt.Errorf("list colleges: %w", err)
	}
	return colleges, nil
}
