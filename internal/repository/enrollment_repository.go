package repository

import (
	"context"

	"github.com/classpad/classpad-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrollmentRepository handles student-class membership data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Exists reports whether a student is currently enrolled in a class.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, classID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND class_id = $2)`,
		studentID, classID,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new enrollment. The UNIQUE (student_id, class_id)
// constraint is the backstop against concurrent double joins; callers map
// its violation to an already-enrolled failure.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO enrollments (student_id, class_id)
		 VALUES ($1, $2)
		 RETURNING id, enrolled_at`,
		e.StudentID, e.ClassID,
	).Scan(&e.ID, &e.EnrolledAt)
}

// Delete removes an enrollment. Returns whether a row was deleted.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, classID int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM enrollments WHERE student_id = $1 AND class_id = $2`,
		studentID, classID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListStudents retrieves the roster of a class ordered by join time.
func (r *EnrollmentRepository) ListStudents(ctx context.Context, classID int) ([]model.EnrolledStudent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.username, u.email, u.first_name, u.last_name, e.enrolled_at
		 FROM enrollments e
		 JOIN users u ON u.id = e.student_id
		 WHERE e.class_id = $1
		 ORDER BY e.enrolled_at ASC`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.EnrolledStudent
	for rows.Next() {
		var s model.EnrolledStudent
		if err := rows.Scan(&s.ID, &s.Username, &s.Email, &s.FirstName, &s.LastName, &s.EnrolledAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
