package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/classpad/classpad-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrAlreadyDeleted    = errors.New("class already deleted")
	ErrClassInactive     = errors.New("class is no longer active")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrCodeSpaceExceeded = errors.New("could not generate a unique class code")
)

const (
	codeAlphabet          = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultCodeLength     = 6
	maxCodeLength         = 20
	codeAttemptsPerLength = 100
)

// ClassService handles class business logic: CRUD, join-code generation
// and enrollment-count reads.
type ClassService struct {
	classes     ClassStore
	assignments AssignmentStore
	enrollments EnrollmentStore
	counts      countCache
	log         zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(
	classes ClassStore,
	assignments AssignmentStore,
	enrollments EnrollmentStore,
	rdb *redis.Client,
	log zerolog.Logger,
) *ClassService {
	return &ClassService{
		classes:     classes,
		assignments: assignments,
		enrollments: enrollments,
		counts:      countCache{classes: classes, rdb: rdb},
		log:         log.With().Str("component", "class_service").Logger(),
	}
}

// Create inserts a new class with a generated join code. A unique-code
// collision on insert (two creations racing the same candidate past the
// existence check) is retried with a fresh code; the class_code unique
// constraint is the authoritative guard.
func (s *ClassService) Create(ctx context.Context, teacherID int, req *model.CreateClassRequest) (*model.ClassWithCount, error) {
	class := &model.Class{
		TeacherID:   teacherID,
		ClassName:   strings.TrimSpace(req.Name),
		Description: req.Description,
	}

	for attempt := 0; attempt < 3; attempt++ {
		code, err := s.generateUniqueCode(ctx, defaultCodeLength)
		if err != nil {
			return nil, err
		}
		class.ClassCode = code

		err = s.classes.Create(ctx, class)
		if err == nil {
			s.log.Info().Int("class_id", class.ID).Str("code", class.ClassCode).Msg("Class created")
			return &model.ClassWithCount{Class: *class}, nil
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("create class: %w", err)
		}
		s.log.Warn().Str("code", code).Msg("Class code collided on insert, regenerating")
	}
	return nil, ErrCodeSpaceExceeded
}

// generateUniqueCode draws random codes from {A-Z, 0-9} until one passes the
// historical existence check. After 100 misses at a given length the length
// grows by one; growth is capped at the schema's 20-character bound.
func (s *ClassService) generateUniqueCode(ctx context.Context, length int) (string, error) {
	for ; length <= maxCodeLength; length++ {
		for attempt := 0; attempt < codeAttemptsPerLength; attempt++ {
			code, err := randomCode(length)
			if err != nil {
				return "", err
			}
			exists, err := s.classes.CodeExists(ctx, code)
			if err != nil {
				return "", fmt.Errorf("check class code: %w", err)
			}
			if !exists {
				return code, nil
			}
		}
		s.log.Warn().Int("length", length).Msg("Class code space saturated, growing length")
	}
	return "", ErrCodeSpaceExceeded
}

func randomCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random code: %w", err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// GetByID retrieves an active class with its enrollment count. When
// teacherID is non-zero the caller must own the class.
func (s *ClassService) GetByID(ctx context.Context, classID, teacherID int) (*model.ClassWithCount, error) {
	class, err := s.getActive(ctx, classID)
	if err != nil {
		return nil, err
	}
	if teacherID != 0 && class.TeacherID != teacherID {
		return nil, ErrUnauthorized
	}
	return s.withCount(ctx, class)
}

// ListByTeacher retrieves a teacher's classes with enrollment counts.
func (s *ClassService) ListByTeacher(ctx context.Context, teacherID int, activeOnly bool) ([]model.ClassWithCount, error) {
	classes, err := s.classes.ListByTeacher(ctx, teacherID, activeOnly)
	if err != nil {
		return nil, err
	}

	out := make([]model.ClassWithCount, 0, len(classes))
	for i := range classes {
		cwc, err := s.withCount(ctx, &classes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *cwc)
	}
	return out, nil
}

// Update applies a partial update to an active class owned by teacherID.
// Nil request fields are untouched; an all-nil request is rejected.
func (s *ClassService) Update(ctx context.Context, classID, teacherID int, req *model.UpdateClassRequest) (*model.ClassWithCount, error) {
	class, err := s.getActive(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.TeacherID != teacherID {
		return nil, ErrUnauthorized
	}

	if req.Name == nil && req.Description == nil {
		return nil, ErrNoFieldsToUpdate
	}
	if req.Name != nil {
		class.ClassName = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		class.Description = &trimmed
	}

	if err := s.classes.Update(ctx, class); err != nil {
		return nil, fmt.Errorf("update class: %w", err)
	}
	return s.withCount(ctx, class)
}

// Delete soft-deletes a class owned by teacherID. Submissions and
// assignments stay in place for history; only the active flag flips.
func (s *ClassService) Delete(ctx context.Context, classID, teacherID int) error {
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
	if !class.IsActive {
		return ErrAlreadyDeleted
	}

	flipped, err := s.classes.Deactivate(ctx, classID)
	if err != nil {
		return fmt.Errorf("deactivate class: %w", err)
	}
	if !flipped {
		return ErrAlreadyDeleted
	}
	s.log.Info().Int("class_id", classID).Msg("Class soft-deleted")
	return nil
}

// ListAssignments retrieves the active assignments of an active class,
// each annotated with the derived checked state.
func (s *ClassService) ListAssignments(ctx context.Context, classID int) ([]model.AssignmentView, error) {
	if _, err := s.getActive(ctx, classID); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	views := make([]model.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, model.AssignmentView{Assignment: a, IsChecked: a.IsChecked(now)})
	}
	return views, nil
}

// ListStudents retrieves the roster of an active class.
func (s *ClassService) ListStudents(ctx context.Context, classID int) ([]model.EnrolledStudent, error) {
	if _, err := s.getActive(ctx, classID); err != nil {
		return nil, err
	}
	students, err := s.enrollments.ListStudents(ctx, classID)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.EnrolledStudent{}
	}
	return students, nil
}

// getActive fetches a class, mapping missing rows to ErrNotFound and
// soft-deleted rows to ErrClassInactive.
func (s *ClassService) getActive(ctx context.Context, classID int) (*model.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !class.IsActive {
		return nil, ErrClassInactive
	}
	return class, nil
}

func (s *ClassService) withCount(ctx context.Context, class *model.Class) (*model.ClassWithCount, error) {
	count, err := s.counts.Get(ctx, class.ID)
	if err != nil {
		return nil, err
	}
	return &model.ClassWithCount{Class: *class, StudentCount: count}, nil
}
