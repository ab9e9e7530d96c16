package models

import "time"

// RegistrationStatus represents the state of a registration.
type RegistrationStatus string

const (
	RegistrationStatusConfirmed  RegistrationStatus = "CONFIRMED"
	RegistrationStatusWaitlisted RegistrationStatus = "WAITLISTED"
	RegistrationStatusCancelled  RegistrationStatus = "CANCELLED"
)

// Valid returns true when the status is a supported value.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusConfirmed, RegistrationStatusWaitlisted, RegistrationStatusCancelled:
		return true
	default:
		return false
	}
}

// Registration links a student to an event. created_at orders the waitlist.
type Registration struct {
	ID          string             `db:"id" json:"id"`
	StudentID   string             `db:"student_id" json:"student_id"`
	EventID     string             `db:"event_id" json:"event_id"`
	Status      RegistrationStatus `db:"status" json:"status"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	CancelledAt *time.Time         `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// CancellationResult reports a cancellation and the promotion it triggered,
// if any. Both changes commit in the same transaction.
type CancellationResult struct {
	Cancelled Registration  `json:"cancelled"`
	Promoted  *Registration `json:"promoted,omitempty"`
}

// RegistrationFilter scopes registration listing queries.
type RegistrationFilter struct {
	EventID   string
	StudentID string
	Status    RegistrationStatus
	Page      int
	PageSize  int
}
