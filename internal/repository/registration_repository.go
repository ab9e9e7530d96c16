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

// RegistrationRepository handles persistence of registrations. The mutating
// methods run their existence checks, constraint checks and writes inside a
// single transaction; capacity is recomputed under the event row lock rather
// than cached, so concurrent registrations serialize per event.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Register creates a registration for the (student, event) pair. It confirms
// while confirmed count is below capacity and waitlists otherwise.
func (r *RegistrationRepository) Register(ctx context.Context, studentID, eventID string) (*models.Registration, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin register: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	var event struct {
		Capacity int                `db:"capacity"`
		Status   models.EventStatus `db:"status"`
	}
	if err := tx.GetContext(ctx, &event, `SELECT capacity, status FROM events WHERE id = $1 FOR UPDATE`, eventID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}
	if event.Status != models.EventStatusScheduled {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("event is %s", strings.ToLower(string(event.Status))))
	}

	var one int
	if err := tx.GetContext(ctx, &one, `SELECT 1 FROM students WHERE id = $1`, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, fmt.Errorf("check student: %w", err)
	}

	err = tx.GetContext(ctx, &one,
		`SELECT 1 FROM registrations WHERE student_id = $1 AND event_id = $2 AND status IN ($3, $4) LIMIT 1`,
		studentID, eventID, models.RegistrationStatusConfirmed, models.RegistrationStatusWaitlisted)
	if err == nil {
		return nil, appErrors.ErrDuplicateRegistration
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("check active registration: %w", err)
	}

	var confirmed int
	if err := tx.GetContext(ctx, &confirmed,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = $2`,
		eventID, models.RegistrationStatusConfirmed); err != nil {
		return nil, fmt.Errorf("count confirmed: %w", err)
	}

	status := models.RegistrationStatusConfirmed
	if confirmed >= event.Capacity {
		status = models.RegistrationStatusWaitlisted
	}

	registration := &models.Registration{
		ID:        uuid.NewString(),
		StudentID: studentID,
		EventID:   eventID,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO registrations (id, student_id, event_id, status, created_at) VALUES (:id, :student_id, :event_id, :status, :created_at)`,
		registration); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit register: %w", err)
	}
	commit = true
	return registration, nil
}

// Cancel sets the registration to cancelled. When a confirmed registration is
// cancelled, the earliest waitlisted registration for the same event is
// promoted inside the same transaction so the vacated slot and the promotion
// are never observable apart.
func (r *RegistrationRepository) Cancel(ctx context.Context, id string) (*models.CancellationResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cancel: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	var registration models.Registration
	if err := tx.GetContext(ctx, &registration,
		`SELECT id, student_id, event_id, status, created_at, cancelled_at FROM registrations WHERE id = $1 FOR UPDATE`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, fmt.Errorf("lock registration: %w", err)
	}
	if registration.Status == models.RegistrationStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "registration already cancelled")
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE registrations SET status = $2, cancelled_at = $3 WHERE id = $1`,
		id, models.RegistrationStatusCancelled, now); err != nil {
		return nil, fmt.Errorf("cancel registration: %w", err)
	}

	wasConfirmed := registration.Status == models.RegistrationStatusConfirmed
	registration.Status = models.RegistrationStatusCancelled
	registration.CancelledAt = &now
	result := &models.CancellationResult{Cancelled: registration}

	if wasConfirmed {
		promoted, err := r.promoteNext(ctx, tx, registration.EventID)
		if err != nil {
			return nil, err
		}
		result.Promoted = promoted
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}
	commit = true
	return result, nil
}

// promoteNext confirms the oldest waitlisted registration for the event, if
// any. FIFO order is creation time, ties broken by id.
func (r *RegistrationRepository) promoteNext(ctx context.Context, tx *sqlx.Tx, eventID string) (*models.Registration, error) {
	var next models.Registration
	err := tx.GetContext(ctx, &next,
		`SELECT id, student_id, event_id, status, created_at, cancelled_at FROM registrations
        WHERE event_id = $1 AND status = $2
        ORDER BY created_at, id
        LIMIT 1
        FOR UPDATE`,
		eventID, models.RegistrationStatusWaitlisted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find waitlisted registration: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE registrations SET status = $2 WHERE id = $1`,
		next.ID, models.RegistrationStatusConfirmed); err != nil {
		return nil, fmt.Errorf("promote registration: %w", err)
	}
	next.Status = models.RegistrationStatusConfirmed
	return &next, nil
}

// FindByID returns a registration by its ID.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	const query = `SELECT id, student_id, event_id, status, created_at, cancelled_at FROM registrations WHERE id = $1`
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, id); err != nil {
		return nil, err
	}
	return &registration, nil
}

// List returns registrations filtered by the provided criteria.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	base := "FROM registrations r"
	var conditions []string
	var args []interface{}

	if filter.EventID != "" {
		conditions = append(conditions, fmt.Sprintf("r.event_id = $%d", len(args)+1))
		args = append(args, filter.EventID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("r.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT r.id, r.student_id, r.event_id, r.status, r.created_at, r.cancelled_at
        %s ORDER BY r.created_at LIMIT %d OFFSET %d`, base+clause, size, offset)

	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return registrations, total, nil
}
