package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/classpad/classpad-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrAlreadyEnrolled = errors.New("student already enrolled in class")
	ErrNotEnrolled     = errors.New("student not enrolled in class")
)

// EnrollmentService manages the student-class membership relation.
type EnrollmentService struct {
	classes     ClassStore
	enrollments EnrollmentStore
	counts      countCache
	log         zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(
	classes ClassStore,
	enrollments EnrollmentStore,
	rdb *redis.Client,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		classes:     classes,
		enrollments: enrollments,
		counts:      countCache{classes: classes, rdb: rdb},
		log:         log.With().Str("component", "enrollment_service").Logger(),
	}
}

// Join enrolls a student into the class matching code. The existence
// pre-check is advisory; a concurrent double join loses to the
// (student_id, class_id) unique constraint and maps to ErrAlreadyEnrolled.
func (s *EnrollmentService) Join(ctx context.Context, studentID int, code string) (*model.ClassWithCount, error) {
	class, err := s.classes.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup class code: %w", err)
	}
	if !class.IsActive {
		return nil, ErrClassInactive
	}

	enrolled, err := s.enrollments.Exists(ctx, studentID, class.ID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	enrollment := &model.Enrollment{StudentID: studentID, ClassID: class.ID}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("create enrollment: %w", err)
	}

	s.counts.Invalidate(ctx, class.ID)
	s.log.Info().Int("student_id", studentID).Int("class_id", class.ID).Msg("Student joined class")

	count, err := s.counts.Get(ctx, class.ID)
	if err != nil {
		return nil, err
	}
	return &model.ClassWithCount{Class: *class, StudentCount: count}, nil
}

// Leave removes a student's enrollment. Leaving twice is an explicit
// ErrNotEnrolled failure, never a silent success.
func (s *EnrollmentService) Leave(ctx context.Context, studentID, classID int) error {
	deleted, err := s.enrollments.Delete(ctx, studentID, classID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if !deleted {
		return ErrNotEnrolled
	}

	s.counts.Invalidate(ctx, classID)
	s.log.Info().Int("student_id", studentID).Int("class_id", classID).Msg("Student left class")
	return nil
}

// RemoveStudent lets the owning teacher remove a student from a class.
func (s *EnrollmentService) RemoveStudent(ctx context.Context, classID, studentID, teacherID int) error {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if class.TeacherID != teacherID {
		return ErrUnauthorized
	}
	return s.Leave(ctx, studentID, classID)
}

// RequireEnrollment verifies that studentID is enrolled in an active class.
// Used to gate student reads of class content.
func (s *EnrollmentService) RequireEnrollment(ctx context.Context, studentID, classID int) error {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !class.IsActive {
		return ErrClassInactive
	}

	enrolled, err := s.enrollments.Exists(ctx, studentID, classID)
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return ErrNotEnrolled
	}
	return nil
}

// ListClasses retrieves the active classes a student is enrolled in, with
// enrollment counts.
func (s *EnrollmentService) ListClasses(ctx context.Context, studentID int) ([]model.ClassWithCount, error) {
	classes, err := s.classes.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	out := make([]model.ClassWithCount, 0, len(classes))
	for i := range classes {
		count, err := s.counts.Get(ctx, classes[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ClassWithCount{Class: classes[i], StudentCount: count})
	}
	return out, nil
}
