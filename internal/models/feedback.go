package models

import "time"

// Feedback carries a 1..5 rating tied to an attendance record. At most one
// per attendance; immutable once created.
type Feedback struct {
	ID           string    `db:"id" json:"id"`
	AttendanceID string    `db:"attendance_id" json:"attendance_id"`
	Rating       int       `db:"rating" json:"rating"`
	Comment      *string   `db:"comment" json:"comment,omitempty"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submitted_at"`
}

// FeedbackRecord extends feedback with event and student context.
type FeedbackRecord struct {
	Feedback
	StudentID string `db:"student_id" json:"student_id"`
	EventID   string `db:"event_id" json:"event_id"`
}
