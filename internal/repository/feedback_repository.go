package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

// FeedbackRepository handles persistence of feedback entries.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Submit stores one feedback entry per attendance. The attendance row is
// locked while checking; the unique index on attendance_id catches races.
func (r *FeedbackRepository) Submit(ctx context.Context, attendanceID string, rating int, comment *string) (*models.Feedback, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin submit feedback: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	var one int
	if err := tx.GetContext(ctx, &one,
		`SELECT 1 FROM attendance WHERE id = $1 FOR UPDATE`, attendanceID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, fmt.Errorf("lock attendance: %w", err)
	}

	feedback := &models.Feedback{
		ID:           uuid.NewString(),
		AttendanceID: attendanceID,
		Rating:       rating,
		Comment:      comment,
		SubmittedAt:  time.Now().UTC(),
	}
	var insertedID string
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO feedback (id, attendance_id, rating, comment, submitted_at) VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (attendance_id) DO NOTHING
        RETURNING id`,
		feedback.ID, feedback.AttendanceID, feedback.Rating, feedback.Comment, feedback.SubmittedAt).Scan(&insertedID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrDuplicateFeedback
		}
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submit feedback: %w", err)
	}
	commit = true
	return feedback, nil
}

// ListByEvent returns feedback entries for an event with student context.
func (r *FeedbackRepository) ListByEvent(ctx context.Context, eventID string) ([]models.FeedbackRecord, error) {
	const query = `SELECT f.id, f.attendance_id, f.rating, f.comment, f.submitted_at, r.event_id, r.student_id
        FROM feedback f
        JOIN attendance a ON a.id = f.attendance_id
        JOIN registrations r ON r.id = a.registration_id
        WHERE r.event_id = $1
        ORDER BY f.submitted_at`
	var records []models.FeedbackRecord
	if err := r.db.SelectContext(ctx, &records, query, eventID); err != nil {
		return nil, fmt.Errorf("list event feedback: %w", err)
	}
	return records, nil
}
