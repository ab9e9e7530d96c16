package models

import "time"

// EventTallies holds the raw per-event counts read from the store. Derived
// figures (percentages, averages) are computed in the report service so the
// zero-denominator rules live in one place.
type EventTallies struct {
	EventID     string      `db:"event_id"`
	Title       string      `db:"title"`
	Status      EventStatus `db:"status"`
	Capacity    int         `db:"capacity"`
	Confirmed   int         `db:"confirmed"`
	Waitlisted  int         `db:"waitlisted"`
	Cancelled   int         `db:"cancelled"`
	Attended    int         `db:"attended"`
	Feedback    int         `db:"feedback"`
	RatingTotal int         `db:"rating_total"`
}

// EventReport aggregates registrations, attendance and feedback for one event.
type EventReport struct {
	EventID              string      `json:"event_id"`
	EventTitle           string      `json:"event_title"`
	EventStatus          EventStatus `json:"event_status"`
	Capacity             int         `json:"capacity"`
	TotalRegistrations   int         `json:"total_registrations"`
	ConfirmedCount       int         `json:"confirmed_count"`
	WaitlistedCount      int         `json:"waitlisted_count"`
	CancelledCount       int         `json:"cancelled_count"`
	AttendanceCount      int         `json:"attendance_count"`
	AttendancePercentage float64     `json:"attendance_percentage"`
	AverageRating        float64     `json:"average_rating"`
	FeedbackCount        int         `json:"feedback_count"`
}

// StudentTallies holds raw per-student counts.
type StudentTallies struct {
	StudentID   string `db:"student_id"`
	FullName    string `db:"full_name"`
	CollegeName string `db:"college_name"`
	Attended    int    `db:"attended"`
	Feedback    int    `db:"feedback"`
	RatingTotal int    `db:"rating_total"`
}

// ParticipationReport summarises a student's engagement. The score weighting
// is configuration, not contract.
type ParticipationReport struct {
	StudentID          string  `json:"student_id"`
	StudentName        string  `json:"student_name"`
	CollegeName        string  `json:"college_name"`
	EventsAttended     int     `json:"events_attended"`
	FeedbackCount      int     `json:"feedback_count"`
	AverageRatingGiven float64 `json:"average_rating_given"`
	ParticipationScore float64 `json:"participation_score"`
}

// CollegeTallies holds raw per-college counts.
type CollegeTallies struct {
	CollegeID     string `db:"college_id"`
	CollegeName   string `db:"college_name"`
	Students      int    `db:"students"`
	Events        int    `db:"events"`
	Registrations int    `db:"registrations"`
	Confirmed     int    `db:"confirmed"`
	Attended      int    `db:"attended"`
}

// CollegeSummary is one row of the cross-college comparison.
type CollegeSummary struct {
	CollegeID            string  `json:"college_id"`
	CollegeName          string  `json:"college_name"`
	TotalStudents        int     `json:"total_students"`
	TotalEvents          int     `json:"total_events"`
	TotalRegistrations   int     `json:"total_registrations"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// EventSummary is one row of the popularity ranking.
type EventSummary struct {
	EventID         string    `db:"event_id" json:"event_id"`
	EventTitle      string    `db:"title" json:"event_title"`
	StartsAt        time.Time `db:"starts_at" json:"starts_at"`
	ConfirmedCount  int       `db:"confirmed" json:"confirmed_count"`
	AttendanceCount int       `db:"attended" json:"attendance_count"`
}
