package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campuslink/campus-events-api/internal/models"
)

// ReportRepository reads aggregate tallies. All queries are read-only and run
// outside transactions; slightly stale results are acceptable on this path.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// EventTallies returns raw registration, attendance and feedback counts for
// one event. sql.ErrNoRows when the event does not exist.
func (r *ReportRepository) EventTallies(ctx context.Context, eventID string) (*models.EventTallies, error) {
	const query = `SELECT e.id AS event_id, e.title, e.status, e.capacity,
        COUNT(r.id) FILTER (WHERE r.status = 'CONFIRMED') AS confirmed,
        COUNT(r.id) FILTER (WHERE r.status = 'WAITLISTED') AS waitlisted,
        COUNT(r.id) FILTER (WHERE r.status = 'CANCELLED') AS cancelled,
        COUNT(a.id) AS attended,
        COUNT(f.id) AS feedback,
        COALESCE(SUM(f.rating), 0) AS rating_total
        FROM events e
        LEFT JOIN registrations r ON r.event_id = e.id
        LEFT JOIN attendance a ON a.registration_id = r.id
        LEFT JOIN feedback f ON f.attendance_id = a.id
        WHERE e.id = $1
        GROUP BY e.id, e.title, e.status, e.capacity`
	var tallies models.EventTallies
	if err := r.db.GetContext(ctx, &tallies, query, eventID); err != nil {
		return nil, err
	}
	return &tallies, nil
}

// StudentTallies returns raw attendance and feedback counts for one student.
func (r *ReportRepository) StudentTallies(ctx context.Context, studentID string) (*models.StudentTallies, error) {
	const query = `SELECT s.id AS student_id, s.full_name, c.name AS college_name,
        COUNT(a.id) AS attended,
        COUNT(f.id) AS feedback,
        COALESCE(SUM(f.rating), 0) AS rating_total
        FROM students s
        JOIN colleges c ON c.id = s.college_id
        LEFT JOIN registrations r ON r.student_id = s.id
        LEFT JOIN attendance a ON a.registration_id = r.id
        LEFT JOIN feedback f ON f.attendance_id = a.id
        WHERE s.id = $1
        GROUP BY s.id, s.full_name, c.name`
	var tallies models.StudentTallies
	if err := r.db.GetContext(ctx, &tallies, query, studentID); err != nil {
		return nil, err
	}
	return &tallies, nil
}

// AllStudentTallies returns tallies for every student, for ranking.
func (r *ReportRepository) AllStudentTallies(ctx context.Context) ([]models.StudentTallies, error) {
	const query = `SELECT s.id AS student_id, s.full_name, c.name AS college_name,
        COUNT(a.id) AS attended,
        COUNT(f.id) AS feedback,
        COALESCE(SUM(f.rating), 0) AS rating_total
        FROM students s
        JOIN colleges c ON c.id = s.college_id
        LEFT JOIN registrations r ON r.student_id = s.id
        LEFT JOIN attendance a ON a.registration_id = r.id
        LEFT JOIN feedback f ON f.attendance_id = a.id
        GROUP BY s.id, s.full_name, c.name`
	var tallies []models.StudentTallies
	if err := r.db.SelectContext(ctx, &tallies, query); err != nil {
		return nil, fmt.Errorf("student tallies: %w", err)
	}
	return tallies, nil
}

// CollegeTallies returns per-college totals for the comparison report.
func (r *ReportRepository) CollegeTallies(ctx context.Context) ([]models.CollegeTallies, error) {
	const query = `SELECT c.id AS college_id, c.name AS college_name,
        (SELECT COUNT(*) FROM students s WHERE s.college_id = c.id) AS students,
        (SELECT COUNT(*) FROM events e WHERE e.college_id = c.id) AS events,
        (SELECT COUNT(*) FROM registrations r JOIN events e ON e.id = r.event_id
            WHERE e.college_id = c.id) AS registrations,
        (SELECT COUNT(*) FROM registrations r JOIN events e ON e.id = r.event_id
            WHERE e.college_id = c.id AND r.status = 'CONFIRMED') AS confirmed,
        (SELECT COUNT(*) FROM attendance a
            JOIN registrations r ON r.id = a.registration_id
            JOIN events e ON e.id = r.event_id
            WHERE e.college_id = c.id) AS attended
        FROM colleges c
        ORDER BY c.name`
	var tallies []models.CollegeTallies
	if err := r.db.SelectContext(ctx, &tallies, query); err != nil {
		return nil, fmt.Errorf("college tallies: %w", err)
	}
	return tallies, nil
}

// EventPopularity returns events ranked by confirmed registrations, ties
// broken by earlier start time.
func (r *ReportRepository) EventPopularity(ctx context.Context) ([]models.EventSummary, error) {
	const query = `SELECT e.id AS event_id, e.title, e.starts_at,
        COUNT(r.id) FILTER (WHERE r.status = 'CONFIRMED') AS confirmed,
        COUNT(a.id) AS attended
        FROM events e
        LEFT JOIN registrations r ON r.event_id = e.id
        LEFT JOIN attendance a ON a.registration_id = r.id
        GROUP BY e.id, e.title, e.starts_at
        ORDER BY confirmed DESC, e.starts_at ASC`
	var summaries []models.EventSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("event popularity: %w", err)
	}
	return summaries, nil
}
