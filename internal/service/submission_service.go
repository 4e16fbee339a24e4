package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/classpad/classpad-backend/internal/config"
	"github.com/classpad/classpad-backend/internal/model"
	"github.com/classpad/classpad-backend/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrDeadlinePassed         = errors.New("assignment deadline has passed")
	ErrResubmissionNotAllowed = errors.New("resubmission not allowed for this assignment")
	ErrInvalidFileType        = errors.New("file type not accepted for this assignment")
	ErrFileTooLarge           = errors.New("file exceeds maximum size")
	ErrFileEmpty              = errors.New("file is empty")
	ErrStorageFailure         = errors.New("file storage failed")
)

// submitRetries bounds retries of the versioned insert when two first-ever
// submissions race to the same submission number.
const submitRetries = 3

// SubmissionService validates and records student file submissions against
// assignment policy, and maintains the per-(assignment, student)
// append-only version history.
type SubmissionService struct {
	submissions SubmissionStore
	assignments AssignmentStore
	enrollments EnrollmentStore
	classes     ClassStore
	users       UserStore
	files       storage.FileStore
	rdb         *redis.Client
	signTTL     time.Duration
	log         zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService. signTTL bounds the
// validity of download URLs.
func NewSubmissionService(
	submissions SubmissionStore,
	assignments AssignmentStore,
	enrollments EnrollmentStore,
	classes ClassStore,
	users UserStore,
	files storage.FileStore,
	rdb *redis.Client,
	signTTL time.Duration,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		assignments: assignments,
		enrollments: enrollments,
		classes:     classes,
		users:       users,
		files:       files,
		rdb:         rdb,
		signTTL:     signTTL,
		log:         log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit validates a student's file against assignment policy and records
// it as the next submission version. Checks run in a fixed order and the
// first failure wins; nothing is written before every check passes.
func (s *SubmissionService) Submit(ctx context.Context, assignmentID, studentID int, fileName string, data []byte) (*model.Submission, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	if !assignment.IsActive {
		return nil, ErrAssignmentInactive
	}

	enrolled, err := s.enrollments.Exists(ctx, studentID, assignment.ClassID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	if !nowUTC().Before(assignment.Deadline) {
		return nil, ErrDeadlinePassed
	}

	hasPrior, err := s.submissions.Exists(ctx, assignmentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check prior submission: %w", err)
	}
	if hasPrior && !assignment.AllowResubmission {
		return nil, ErrResubmissionNotAllowed
	}

	if len(data) == 0 {
		return nil, ErrFileEmpty
	}
	if len(data) > model.MaxSubmissionBytes {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !extensionAllowed(ext, assignment.ProgrammingLanguage) {
		return nil, ErrInvalidFileType
	}

	key := fmt.Sprintf("submissions/%d/%d_%s%s", assignmentID, studentID, uuid.New(), ext)
	size, err := s.files.Put(ctx, key, data, contentTypeFor(ext))
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("File store put failed")
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	submission := &model.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		FileName:     fileName,
		FileKey:      key,
		FileSize:     size,
	}
	if err := s.insertWithRetry(ctx, submission, assignment.AllowResubmission); err != nil {
		// Roll the stored file back so no orphan survives a failed insert.
		if rmErr := s.files.Remove(ctx, key); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("key", key).Msg("Orphan cleanup failed, janitor will collect")
		}
		return nil, err
	}

	s.publishEvent(ctx, assignment, submission)

	s.log.Info().
		Int("assignment_id", assignmentID).
		Int("student_id", studentID).
		Int("number", submission.SubmissionNumber).
		Msg("Submission recorded")
	return submission, nil
}

// insertWithRetry re-runs the versioned insert when the submission-number
// unique constraint rejects a concurrent duplicate. A conflict proves a
// competing submission for the pair just committed, so when resubmission
// is disabled the loser must not retry into version 2.
func (s *SubmissionService) insertWithRetry(ctx context.Context, submission *model.Submission, allowResubmission bool) error {
	var err error
	for attempt := 0; attempt < submitRetries; attempt++ {
		err = s.submissions.Create(ctx, submission)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return fmt.Errorf("create submission: %w", err)
		}
		if !allowResubmission {
			return ErrResubmissionNotAllowed
		}
		s.log.Warn().
			Int("assignment_id", submission.AssignmentID).
			Int("student_id", submission.StudentID).
			Msg("Submission number conflict, retrying")
	}
	return fmt.Errorf("create submission: %w", err)
}

// History retrieves every submission of a pair, ascending by number.
func (s *SubmissionService) History(ctx context.Context, assignmentID, studentID int) ([]model.Submission, error) {
	subs, err := s.submissions.History(ctx, assignmentID, studentID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	return subs, nil
}

// ListByAssignment retrieves an assignment's submissions for its teacher.
// With latestOnly, one row per student.
func (s *SubmissionService) ListByAssignment(ctx context.Context, assignmentID int, latestOnly bool) ([]model.SubmissionWithStudent, error) {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	subs, err := s.submissions.ListByAssignment(ctx, assignmentID, latestOnly)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []model.SubmissionWithStudent{}
	}
	return subs, nil
}

// ListByStudent retrieves a student's submissions across assignments.
// With latestOnly, one row per assignment.
func (s *SubmissionService) ListByStudent(ctx context.Context, studentID int, latestOnly bool) ([]model.SubmissionWithAssignment, error) {
	subs, err := s.submissions.ListByStudent(ctx, studentID, latestOnly)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []model.SubmissionWithAssignment{}
	}
	return subs, nil
}

// DownloadURL issues a time-limited signed URL for a submission's file.
// Allowed for the submitting student and for the teacher owning the
// submission's class.
func (s *SubmissionService) DownloadURL(ctx context.Context, submissionID, requesterID int) (string, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}

	if submission.StudentID != requesterID {
		ok, err := s.isClassTeacher(ctx, submission.AssignmentID, requesterID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrUnauthorized
		}
	}

	url, err := s.files.SignedURL(submission.FileKey, s.signTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return url, nil
}

// isClassTeacher reports whether userID owns the class the assignment
// belongs to.
func (s *SubmissionService) isClassTeacher(ctx context.Context, assignmentID, userID int) (bool, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	class, err := s.classes.GetByID(ctx, assignment.ClassID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return class.TeacherID == userID, nil
}

// publishEvent pushes a submission event onto the class feed channel.
// Feed delivery is best-effort; failures are logged, never surfaced.
func (s *SubmissionService) publishEvent(ctx context.Context, assignment *model.Assignment, submission *model.Submission) {
	if s.rdb == nil {
		return
	}

	event := model.SubmissionEvent{
		ClassID:          assignment.ClassID,
		AssignmentID:     assignment.ID,
		AssignmentName:   assignment.AssignmentName,
		StudentID:        submission.StudentID,
		SubmissionID:     submission.ID,
		SubmissionNumber: submission.SubmissionNumber,
		FileName:         submission.FileName,
		SubmittedAt:      submission.SubmittedAt,
	}
	if user, err := s.users.GetByID(ctx, submission.StudentID); err == nil {
		event.StudentName = user.FullName()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Msg("Marshal submission event")
		return
	}
	channel := config.CacheKey.ClassFeedChannel(assignment.ClassID)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Publish submission event failed")
	}
}

func extensionAllowed(ext string, lang model.ProgrammingLanguage) bool {
	for _, allowed := range model.AllowedExtensions[lang] {
		if ext == allowed {
			return true
		}
	}
	return false
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".py", ".java":
		return "text/plain; charset=utf-8"
	case ".ipynb":
		return "application/x-ipynb+json"
	case ".jar":
		return "application/java-archive"
	default:
		return "application/octet-stream"
	}
}
