package repository

import (
	"context"
	"fmt"

	"github.com/classpad/classpad-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmissionRepository handles submission data access. Submission rows are
// append-only; nothing here updates or deletes them except the is_latest
// flip that accompanies a resubmission.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts the next submission version for an (assignment, student)
// pair in a single transaction:
//
//  1. lock the pair's existing rows and count them,
//  2. flip previous rows to is_latest = FALSE,
//  3. insert the new row as number count+1 with is_latest = TRUE.
//
// The row locks serialize concurrent resubmissions. A first-ever submission
// has no rows to lock, so two of them can still race to number 1; the
// UNIQUE (assignment_id, student_id, submission_number) constraint rejects
// the loser and the caller retries.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM (
		     SELECT 1 FROM submissions
		     WHERE assignment_id = $1 AND student_id = $2
		     FOR UPDATE
		 ) locked`, s.AssignmentID, s.StudentID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count submissions: %w", err)
	}

	if count > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE submissions SET is_latest = FALSE
			 WHERE assignment_id = $1 AND student_id = $2 AND is_latest`,
			s.AssignmentID, s.StudentID); err != nil {
			return fmt.Errorf("flip latest: %w", err)
		}
	}

	s.SubmissionNumber = count + 1
	s.IsLatest = true
	err = tx.QueryRow(ctx,
		`INSERT INTO submissions (assignment_id, student_id, file_name, file_key, file_size, submission_number, is_latest)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		 RETURNING id, submitted_at`,
		s.AssignmentID, s.StudentID, s.FileName, s.FileKey, s.FileSize, s.SubmissionNumber,
	).Scan(&s.ID, &s.SubmittedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a submission by its ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id int) (*model.Submission, error) {
	s := &model.Submission{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, assignment_id, student_id, file_name, file_key, file_size, submission_number, submitted_at, is_latest
		 FROM submissions WHERE id = $1`, id,
	).Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.FileName, &s.FileKey, &s.FileSize,
		&s.SubmissionNumber, &s.SubmittedAt, &s.IsLatest)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Exists reports whether the pair has at least one submission.
func (r *SubmissionRepository) Exists(ctx context.Context, assignmentID, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE assignment_id = $1 AND student_id = $2)`,
		assignmentID, studentID,
	).Scan(&exists)
	return exists, err
}

// History retrieves every submission of a pair, ascending by submission number.
func (r *SubmissionRepository) History(ctx context.Context, assignmentID, studentID int) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, assignment_id, student_id, file_name, file_key, file_size, submission_number, submitted_at, is_latest
		 FROM submissions
		 WHERE assignment_id = $1 AND student_id = $2
		 ORDER BY submission_number ASC`, assignmentID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.FileName, &s.FileKey, &s.FileSize,
			&s.SubmissionNumber, &s.SubmittedAt, &s.IsLatest); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// ListByAssignment retrieves submissions for an assignment with the
// submitter's name, newest first. With latestOnly, one row per student.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID int, latestOnly bool) ([]model.SubmissionWithStudent, error) {
	query := `SELECT s.id, s.assignment_id, s.student_id, s.file_name, s.file_key, s.file_size,
	                 s.submission_number, s.submitted_at, s.is_latest,
	                 TRIM(u.first_name || ' ' || u.last_name)
	          FROM submissions s
	          JOIN users u ON u.id = s.student_id
	          WHERE s.assignment_id = $1`
	if latestOnly {
		query += ` AND s.is_latest`
	}
	query += ` ORDER BY s.submitted_at DESC`

	rows, err := r.pool.Query(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.SubmissionWithStudent
	for rows.Next() {
		var s model.SubmissionWithStudent
		if err := rows.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.FileName, &s.FileKey, &s.FileSize,
			&s.SubmissionNumber, &s.SubmittedAt, &s.IsLatest, &s.StudentName); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// ListByStudent retrieves a student's submissions with the assignment
// title, newest first. With latestOnly, one row per assignment.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID int, latestOnly bool) ([]model.SubmissionWithAssignment, error) {
	query := `SELECT s.id, s.assignment_id, s.student_id, s.file_name, s.file_key, s.file_size,
	                 s.submission_number, s.submitted_at, s.is_latest,
	                 a.assignment_name
	          FROM submissions s
	          JOIN assignments a ON a.id = s.assignment_id
	          WHERE s.student_id = $1`
	if latestOnly {
		query += ` AND s.is_latest`
	}
	query += ` ORDER BY s.submitted_at DESC`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.SubmissionWithAssignment
	for rows.Next() {
		var s model.SubmissionWithAssignment
		if err := rows.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.FileName, &s.FileKey, &s.FileSize,
			&s.SubmissionNumber, &s.SubmittedAt, &s.IsLatest, &s.AssignmentName); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// ListFileKeys returns every stored file key. Used by the orphan-file
// janitor to reconcile the upload directory against the database.
func (r *SubmissionRepository) ListFileKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT file_key FROM submissions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys[key] = struct{}{}
	}
	return keys, rows.Err()
}
