package models

import "time"

// Student belongs to exactly one college. Email is unique across colleges.
type Student struct {
	ID        string    `db:"id" json:"id"`
	CollegeID string    `db:"college_id" json:"college_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StudentDetail extends the student row with college metadata.
type StudentDetail struct {
	Student
	CollegeName string `db:"college_name" json:"college_name"`
}

// StudentFilter scopes student listing queries.
type StudentFilter struct {
	CollegeID string
	Search    string
	Page      int
	PageSize  int
}
