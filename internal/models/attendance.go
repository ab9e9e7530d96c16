package models

import "time"

// Attendance records that a confirmed registrant was present. Immutable
// once created; at most one per registration.
type Attendance struct {
	ID             string    `db:"id" json:"id"`
	RegistrationID string    `db:"registration_id" json:"registration_id"`
	CheckedInAt    time.Time `db:"checked_in_at" json:"checked_in_at"`
}

// AttendanceRecord extends the attendance row with registration context.
type AttendanceRecord struct {
	Attendance
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
	EventID     string `db:"event_id" json:"event_id"`
}
