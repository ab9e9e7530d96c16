package models

import "time"

// EventStatus represents the lifecycle state of an event.
type EventStatus string

const (
	EventStatusScheduled EventStatus = "SCHEDULED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusCompleted EventStatus = "COMPLETED"
)

// Valid returns true when the status is a supported value.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusScheduled, EventStatusCancelled, EventStatusCompleted:
		return true
	default:
		return false
	}
}

// Event is a college-scoped happening with a fixed confirmed capacity.
// Capacity bounds confirmed registrations only; the waitlist is unbounded.
type Event struct {
	ID          string      `db:"id" json:"id"`
	CollegeID   string      `db:"college_id" json:"college_id"`
	Code        string      `db:"code" json:"code"`
	Title       string      `db:"title" json:"title"`
	Description *string     `db:"description" json:"description,omitempty"`
	Capacity    int         `db:"capacity" json:"capacity"`
	StartsAt    time.Time   `db:"starts_at" json:"starts_at"`
	EndsAt      time.Time   `db:"ends_at" json:"ends_at"`
	Status      EventStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// EventFilter scopes event listing queries.
type EventFilter struct {
	CollegeID string
	Status    EventStatus
	Page      int
	PageSize  int
}
