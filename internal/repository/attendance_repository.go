package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

// AttendanceRepository handles persistence of attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Mark records attendance for a confirmed registration. The registration row
// is locked for the duration of the check-then-insert; duplicates surface via
// the unique index on registration_id.
func (r *AttendanceRepository) Mark(ctx context.Context, registrationID string) (*models.Attendance, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mark attendance: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	var status models.RegistrationStatus
	if err := tx.GetContext(ctx, &status,
		`SELECT status FROM registrations WHERE id = $1 FOR UPDATE`, registrationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, fmt.Errorf("lock registration: %w", err)
	}
	if status != models.RegistrationStatusConfirmed {
		return nil, appErrors.Clone(appErrors.ErrInvalidState,
			fmt.Sprintf("registration is %s, only confirmed registrations can be marked attended", strings.ToLower(string(status))))
	}

	attendance := &models.Attendance{
		ID:             uuid.NewString(),
		RegistrationID: registrationID,
		CheckedInAt:    time.Now().UTC(),
	}
	var insertedID string
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO attendance (id, registration_id, checked_in_at) VALUES ($1, $2, $3)
        ON CONFLICT (registration_id) DO NOTHING
        RETURNING id`,
		attendance.ID, attendance.RegistrationID, attendance.CheckedInAt).Scan(&insertedID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrDuplicateAttendance
		}
		return nil, fmt.Errorf("create attendance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mark attendance: %w", err)
	}
	commit = true
	return attendance, nil
}

// ListByEvent returns attendance rows for an event with student context.
func (r *AttendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error) {
	const query = `SELECT a.id, a.registration_id, a.checked_in_at, r.event_id, s.id AS student_id, s.full_name AS student_name
        FROM attendance a
        JOIN registrations r ON r.id = a.registration_id
        JOIN students s ON s.id = r.student_id
        WHERE r.event_id = $1
        ORDER BY a.checked_in_at`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, eventID); err != nil {
		return nil, fmt.Errorf("list event attendance: %w", err)
	}
	return records, nil
}
