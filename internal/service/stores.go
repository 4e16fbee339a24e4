package service

import (
	"context"

	"github.com/classpad/classpad-backend/internal/model"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them; tests substitute in-memory fakes.

// UserStore is the persistence surface for user accounts.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// ClassStore is the persistence surface for classes.
type ClassStore interface {
	GetByID(ctx context.Context, id int) (*model.Class, error)
	GetByCode(ctx context.Context, code string) (*model.Class, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListByTeacher(ctx context.Context, teacherID int, activeOnly bool) ([]model.Class, error)
	ListByStudent(ctx context.Context, studentID int) ([]model.Class, error)
	Create(ctx context.Context, c *model.Class) error
	Update(ctx context.Context, c *model.Class) error
	Deactivate(ctx context.Context, id int) (bool, error)
	StudentCount(ctx context.Context, classID int) (int, error)
}

// EnrollmentStore is the persistence surface for memberships.
type EnrollmentStore interface {
	Exists(ctx context.Context, studentID, classID int) (bool, error)
	Create(ctx context.Context, e *model.Enrollment) error
	Delete(ctx context.Context, studentID, classID int) (bool, error)
	ListStudents(ctx context.Context, classID int) ([]model.EnrolledStudent, error)
}

// AssignmentStore is the persistence surface for assignments.
type AssignmentStore interface {
	GetByID(ctx context.Context, id int) (*model.Assignment, error)
	ListByClass(ctx context.Context, classID int) ([]model.Assignment, error)
	Create(ctx context.Context, a *model.Assignment) error
	Update(ctx context.Context, a *model.Assignment) error
	Deactivate(ctx context.Context, id int) (bool, error)
}

// SubmissionStore is the persistence surface for submissions.
type SubmissionStore interface {
	Create(ctx context.Context, s *model.Submission) error
	GetByID(ctx context.Context, id int) (*model.Submission, error)
	Exists(ctx context.Context, assignmentID, studentID int) (bool, error)
	History(ctx context.Context, assignmentID, studentID int) ([]model.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID int, latestOnly bool) ([]model.SubmissionWithStudent, error)
	ListByStudent(ctx context.Context, studentID int, latestOnly bool) ([]model.SubmissionWithAssignment, error)
}
