package repository

import (
	"context"

	"github.com/classpad/classpad-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// GetByID retrieves a class by its ID, active or not.
func (r *ClassRepository) GetByID(ctx context.Context, id int) (*model.Class, error) {
	c := &model.Class{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, teacher_id, class_name, class_code, description, is_active, created_at
		 FROM classes WHERE id = $1`, id,
	).Scan(&c.ID, &c.TeacherID, &c.ClassName, &c.ClassCode, &c.Description, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByCode retrieves a class by its join code.
func (r *ClassRepository) GetByCode(ctx context.Context, code string) (*model.Class, error) {
	c := &model.Class{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, teacher_id, class_name, class_code, description, is_active, created_at
		 FROM classes WHERE class_code = $1`, code,
	).Scan(&c.ID, &c.TeacherID, &c.ClassName, &c.ClassCode, &c.Description, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CodeExists reports whether any class, active or not, uses the given code.
// The historical set matters: codes are never recycled.
func (r *ClassRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM classes WHERE class_code = $1)`, code,
	).Scan(&exists)
	return exists, err
}

// ListByTeacher retrieves classes owned by a teacher, newest first.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID int, activeOnly bool) ([]model.Class, error) {
	query := `SELECT id, teacher_id, class_name, class_code, description, is_active, created_at
	          FROM classes WHERE teacher_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.TeacherID, &c.ClassName, &c.ClassCode, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// ListByStudent retrieves the active classes a student is enrolled in,
// most recently joined first.
func (r *ClassRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Class, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.teacher_id, c.class_name, c.class_code, c.description, c.is_active, c.created_at
		 FROM classes c
		 JOIN enrollments e ON e.class_id = c.id
		 WHERE e.student_id = $1 AND c.is_active
		 ORDER BY e.enrolled_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.TeacherID, &c.ClassName, &c.ClassCode, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO classes (teacher_id, class_name, class_code, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, is_active, created_at`,
		c.TeacherID, c.ClassName, c.ClassCode, c.Description,
	).Scan(&c.ID, &c.IsActive, &c.CreatedAt)
}

// Update modifies a class's name and description.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE classes SET class_name = $1, description = $2 WHERE id = $3`,
		c.ClassName, c.Description, c.ID)
	return err
}

// Deactivate soft-deletes a class. Returns whether a row was flipped.
func (r *ClassRepository) Deactivate(ctx context.Context, id int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE classes SET is_active = FALSE WHERE id = $1 AND is_active`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// StudentCount returns the number of current enrollments in a class.
func (r *ClassRepository) StudentCount(ctx context.Context, classID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE class_id = $1`, classID,
	).Scan(&count)
	return count, err
}
