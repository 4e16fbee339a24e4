package model

import "time"

// Enrollment represents current student membership in a class. Leaving a
// class deletes the row; membership keeps no history.
type Enrollment struct {
	ID         int       `json:"id"`
	StudentID  int       `json:"student_id"`
	ClassID    int       `json:"class_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// EnrolledStudent is the roster shape for a class's student listing.
type EnrolledStudent struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
