package repository

import (
	"context"

	"github.com/classpad/classpad-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentRepository handles assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// GetByID retrieves an assignment by its ID, active or not.
func (r *AssignmentRepository) GetByID(ctx context.Context, id int) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, class_id, assignment_name, description, programming_language,
		        deadline, allow_resubmission, is_active, created_at
		 FROM assignments WHERE id = $1`, id,
	).Scan(&a.ID, &a.ClassID, &a.AssignmentName, &a.Description, &a.ProgrammingLanguage,
		&a.Deadline, &a.AllowResubmission, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByClass retrieves the active assignments of a class, newest first.
func (r *AssignmentRepository) ListByClass(ctx context.Context, classID int) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, class_id, assignment_name, description, programming_language,
		        deadline, allow_resubmission, is_active, created_at
		 FROM assignments
		 WHERE class_id = $1 AND is_active
		 ORDER BY created_at DESC`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.ClassID, &a.AssignmentName, &a.Description, &a.ProgrammingLanguage,
			&a.Deadline, &a.AllowResubmission, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Create inserts a new assignment as active.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assignments (class_id, assignment_name, description, programming_language, deadline, allow_resubmission)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, is_active, created_at`,
		a.ClassID, a.AssignmentName, a.Description, a.ProgrammingLanguage, a.Deadline, a.AllowResubmission,
	).Scan(&a.ID, &a.IsActive, &a.CreatedAt)
}

// Update persists the full field set of an assignment. Partial-update
// merging happens in the service; the repository always writes all
// mutable columns.
func (r *AssignmentRepository) Update(ctx context.Context, a *model.Assignment) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assignments
		 SET assignment_name = $1, description = $2, programming_language = $3,
		     deadline = $4, allow_resubmission = $5
		 WHERE id = $6`,
		a.AssignmentName, a.Description, a.ProgrammingLanguage, a.Deadline, a.AllowResubmission, a.ID)
	return err
}

// Deactivate soft-deletes an assignment. Returns whether a row was flipped.
func (r *AssignmentRepository) Deactivate(ctx context.Context, id int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE assignments SET is_active = FALSE WHERE id = $1 AND is_active`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
