package model

import "time"

// ProgrammingLanguage enumerates the languages an assignment accepts.
type ProgrammingLanguage string

const (
	LanguagePython ProgrammingLanguage = "python"
	LanguageJava   ProgrammingLanguage = "java"
)

// Valid reports whether the language is one of the supported values.
func (l ProgrammingLanguage) Valid() bool {
	return l == LanguagePython || l == LanguageJava
}

// Assignment represents a class assignment with a submission deadline.
type Assignment struct {
	ID                  int                 `json:"id"`
	ClassID             int                 `json:"class_id"`
	AssignmentName      string              `json:"title"`
	Description         string              `json:"description"`
	ProgrammingLanguage ProgrammingLanguage `json:"programming_language"`
	Deadline            time.Time           `json:"deadline"`
	AllowResubmission   bool                `json:"allow_resubmission"`
	IsActive            bool                `json:"is_active"`
	CreatedAt           time.Time           `json:"created_at"`
}

// IsChecked reports whether the deadline has passed as of now. Derived on
// every read, never stored.
func (a *Assignment) IsChecked(now time.Time) bool {
	return a.Deadline.Before(now)
}

// AssignmentView is the read shape returned by listing endpoints,
// carrying the derived checked state.
type AssignmentView struct {
	Assignment
	IsChecked bool `json:"is_checked"`
}

// CreateAssignmentRequest is the payload for creating an assignment.
type CreateAssignmentRequest struct {
	Name                string    `json:"title" binding:"required,min=2,max=200"`
	Description         string    `json:"description" binding:"required,max=5000"`
	ProgrammingLanguage string    `json:"programming_language" binding:"required"`
	Deadline            time.Time `json:"deadline" binding:"required"`
	AllowResubmission   *bool     `json:"allow_resubmission" binding:"omitempty"`
}

// UpdateAssignmentRequest is the partial-update payload for an assignment.
// Nil fields are left untouched.
type UpdateAssignmentRequest struct {
	Name                *string    `json:"title" binding:"omitempty,min=2,max=200"`
	Description         *string    `json:"description" binding:"omitempty,max=5000"`
	ProgrammingLanguage *string    `json:"programming_language" binding:"omitempty"`
	Deadline            *time.Time `json:"deadline" binding:"omitempty"`
	AllowResubmission   *bool      `json:"allow_resubmission" binding:"omitempty"`
}

// IsEmpty reports whether no field of the partial update is set.
func (r *UpdateAssignmentRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.ProgrammingLanguage == nil &&
		r.Deadline == nil && r.AllowResubmission == nil
}
