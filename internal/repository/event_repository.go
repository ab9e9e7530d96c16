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

// EventRepository handles persistence of events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create persists a new event record.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Status == "" {
		event.Status = models.EventStatusScheduled
	}
	const query = `INSERT INTO events (id, college_id, code, title, description, capacity, starts_at, ends_at, status, created_at)
        VALUES (:id, :college_id, :code, :title, :description, :capacity, :starts_at, :ends_at, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "event code already in use for this college")
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// FindByID returns an event by its ID.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	const query = `SELECT id, college_id, code, title, description, capacity, starts_at, ends_at, status, created_at FROM events WHERE id = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// ExistsByCode checks whether the college already uses the event code.
func (r *EventRepository) ExistsByCode(ctx context.Context, collegeID, code string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM events WHERE college_id = $1 AND code = $2 LIMIT 1`, collegeID, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check event code: %w", err)
	}
	return true, nil
}

// List returns events filtered by the provided criteria.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	base := "FROM events e"
	var conditions []string
	var args []interface{}

	if filter.CollegeID != "" {
		conditions = append(conditions, fmt.Sprintf("e.college_id = $%d", len(args)+1))
		args = append(args, filter.CollegeID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
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

	query := fmt.Sprintf(`SELECT e.id, e.college_id, e.code, e.title, e.description, e.capacity, e.starts_at, e.ends_at, e.status, e.created_at
        %s ORDER BY e.starts_at LIMIT %d OFFSET %d`, base+clause, size, offset)

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// Complete transitions a scheduled event to completed. The status check and
// the update run in one transaction with the event row locked, so a
// concurrent cancellation cannot slip in between them. Completing an already
// completed event is a no-op.
func (r *EventRepository) Complete(ctx context.Context, id string) (*models.Event, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin complete event: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	var event models.Event
	if err := tx.GetContext(ctx, &event,
		`SELECT id, college_id, code, title, description, capacity, starts_at, ends_at, status, created_at FROM events WHERE id = $1 FOR UPDATE`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}

	switch event.Status {
	case models.EventStatusCompleted:
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit complete event: %w", err)
		}
		commit = true
		return &event, nil
	case models.EventStatusCancelled:
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "cancelled events cannot be completed")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET status = $2 WHERE id = $1`, id, models.EventStatusCompleted); err != nil {
		return nil, fmt.Errorf("complete event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit complete event: %w", err)
	}
	commit = true

	event.Status = models.EventStatusCompleted
	return &event, nil
}

// CancelWithRegistrations marks the event cancelled and bulk-cancels every
// active registration in the same transaction. No promotion happens; there is
// nothing left to promote into. Cancelling an already-cancelled event is a
// no-op.
func (r *EventRepository) CancelWithRegistrations(ctx context.Context, id string) (*models.Event, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin cancel event: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	var event models.Event
	if err := tx.GetContext(ctx, &event,
		`SELECT id, college_id, code, title, description, capacity, starts_at, ends_at, status, created_at FROM events WHERE id = $1 FOR UPDATE`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, 0, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, 0, fmt.Errorf("lock event: %w", err)
	}

	if event.Status == models.EventStatusCancelled {
		if err := tx.Commit(); err != nil {
			return nil, 0, fmt.Errorf("commit cancel event: %w", err)
		}
		commit = true
		return &event, 0, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET status = $2 WHERE id = $1`, id, models.EventStatusCancelled); err != nil {
		return nil, 0, fmt.Errorf("cancel event: %w", err)
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE registrations SET status = $2, cancelled_at = $3 WHERE event_id = $1 AND status IN ($4, $5)`,
		id, models.RegistrationStatusCancelled, now,
		models.RegistrationStatusConfirmed, models.RegistrationStatusWaitlisted)
	if err != nil {
		return nil, 0, fmt.Errorf("cancel event registrations: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("count cancelled registrations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit cancel event: %w", err)
	}
	commit = true

	event.Status = models.EventStatusCancelled
	return &event, int(affected), nil
}
