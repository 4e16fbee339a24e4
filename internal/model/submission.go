package model

import "time"

// MaxSubmissionBytes is the hard cap on submitted file size (10 MiB).
const MaxSubmissionBytes = 10 * 1024 * 1024

// AllowedExtensions maps each programming language to the file extensions
// it accepts. Business constants, not configurable.
var AllowedExtensions = map[ProgrammingLanguage][]string{
	LanguagePython: {".py", ".ipynb"},
	LanguageJava:   {".java", ".jar"},
}

// Submission is one version of a student's answer to an assignment.
// Rows are append-only: a resubmission inserts a new row with the next
// submission number and flips the previous latest flag.
type Submission struct {
	ID               int       `json:"id"`
	AssignmentID     int       `json:"assignment_id"`
	StudentID        int       `json:"student_id"`
	FileName         string    `json:"file_name"`
	FileKey          string    `json:"-"`
	FileSize         int64     `json:"file_size"`
	SubmissionNumber int       `json:"submission_number"`
	SubmittedAt      time.Time `json:"submitted_at"`
	IsLatest         bool      `json:"is_latest"`
}

// SubmissionWithStudent is the teacher-facing listing shape with the
// submitter's display name denormalized in.
type SubmissionWithStudent struct {
	Submission
	StudentName string `json:"student_name"`
}

// SubmissionWithAssignment is the student-facing listing shape with the
// assignment title denormalized in.
type SubmissionWithAssignment struct {
	Submission
	AssignmentName string `json:"assignment_name"`
}

// SubmissionEvent is published on the class feed channel after a
// successful submission.
type SubmissionEvent struct {
	ClassID          int       `json:"class_id"`
	AssignmentID     int       `json:"assignment_id"`
	AssignmentName   string    `json:"assignment_name"`
	StudentID        int       `json:"student_id"`
	StudentName      string    `json:"student_name"`
	SubmissionID     int       `json:"submission_id"`
	SubmissionNumber int       `json:"submission_number"`
	FileName         string    `json:"file_name"`
	SubmittedAt      time.Time `json:"submitted_at"`
}
