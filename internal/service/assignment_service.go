package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/classpad/classpad-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrInvalidDeadline    = errors.New("deadline must be in the future")
	ErrInvalidLanguage    = errors.New("unsupported programming language")
	ErrAssignmentInactive = errors.New("assignment is no longer active")
)

// AssignmentService owns deadline and resubmission-permission rules for a
// class's assignments.
type AssignmentService struct {
	assignments AssignmentStore
	classes     ClassStore
	log         zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(assignments AssignmentStore, classes ClassStore, log zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		classes:     classes,
		log:         log.With().Str("component", "assignment_service").Logger(),
	}
}

// Create adds an assignment to an active class owned by teacherID. The
// deadline is normalized to UTC and must be strictly in the future;
// resubmission defaults to allowed.
func (s *AssignmentService) Create(ctx context.Context, classID, teacherID int, req *model.CreateAssignmentRequest) (*model.Assignment, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !class.IsActive {
		return nil, ErrNotFound
	}
	if class.TeacherID != teacherID {
		return nil, ErrUnauthorized
	}

	deadline := req.Deadline.UTC()
	if !deadline.After(nowUTC()) {
		return nil, ErrInvalidDeadline
	}

	lang := model.ProgrammingLanguage(strings.ToLower(req.ProgrammingLanguage))
	if !lang.Valid() {
		return nil, ErrInvalidLanguage
	}

	allowResubmission := true
	if req.AllowResubmission != nil {
		allowResubmission = *req.AllowResubmission
	}

	assignment := &model.Assignment{
		ClassID:             classID,
		AssignmentName:      strings.TrimSpace(req.Name),
		Description:         strings.TrimSpace(req.Description),
		ProgrammingLanguage: lang,
		Deadline:            deadline,
		AllowResubmission:   allowResubmission,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.log.Info().Int("assignment_id", assignment.ID).Int("class_id", classID).Msg("Assignment created")
	return assignment, nil
}

// Update applies a partial update to an active assignment. Validation
// applies only to fields actually supplied; an all-nil request is rejected.
func (s *AssignmentService) Update(ctx context.Context, assignmentID, teacherID int, req *model.UpdateAssignmentRequest) (*model.Assignment, error) {
	assignment, err := s.getActive(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, assignment, teacherID); err != nil {
		return nil, err
	}

	if req.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	if req.Deadline != nil {
		deadline := req.Deadline.UTC()
		if !deadline.After(nowUTC()) {
			return nil, ErrInvalidDeadline
		}
		assignment.Deadline = deadline
	}
	if req.ProgrammingLanguage != nil {
		lang := model.ProgrammingLanguage(strings.ToLower(*req.ProgrammingLanguage))
		if !lang.Valid() {
			return nil, ErrInvalidLanguage
		}
		assignment.ProgrammingLanguage = lang
	}
	if req.Name != nil {
		assignment.AssignmentName = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		assignment.Description = strings.TrimSpace(*req.Description)
	}
	if req.AllowResubmission != nil {
		assignment.AllowResubmission = *req.AllowResubmission
	}

	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	return assignment, nil
}

// Get retrieves an active assignment with its derived checked state.
func (s *AssignmentService) Get(ctx context.Context, assignmentID int) (*model.AssignmentView, error) {
	assignment, err := s.getActive(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return &model.AssignmentView{Assignment: *assignment, IsChecked: assignment.IsChecked(nowUTC())}, nil
}

// Delete soft-deletes an assignment owned by teacherID. Submission history
// stays referable, mirroring the class deletion policy.
func (s *AssignmentService) Delete(ctx context.Context, assignmentID, teacherID int) error {
	assignment, err := s.getActive(ctx, assignmentID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, assignment, teacherID); err != nil {
		return err
	}

	flipped, err := s.assignments.Deactivate(ctx, assignmentID)
	if err != nil {
		return fmt.Errorf("deactivate assignment: %w", err)
	}
	if !flipped {
		return ErrAlreadyDeleted
	}
	s.log.Info().Int("assignment_id", assignmentID).Msg("Assignment soft-deleted")
	return nil
}

// getActive fetches an assignment, mapping missing rows to ErrNotFound and
// soft-deleted rows to ErrAssignmentInactive.
func (s *AssignmentService) getActive(ctx context.Context, assignmentID int) (*model.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !assignment.IsActive {
		return nil, ErrAssignmentInactive
	}
	return assignment, nil
}

// Authorize checks that teacherID owns classID. Exposed for handlers that
// guard reads spanning services, like submission listings.
func (s *AssignmentService) Authorize(ctx context.Context, classID, teacherID int) error {
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
	return nil
}

// authorize checks that teacherID owns the assignment's class.
func (s *AssignmentService) authorize(ctx context.Context, assignment *model.Assignment, teacherID int) error {
	return s.Authorize(ctx, assignment.ClassID, teacherID)
}
