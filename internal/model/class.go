package model

import "time"

// Class represents a teacher-owned class that students join by code.
// Deletion is a soft transition on IsActive; the row is never removed
// while submissions reference its assignments.
type Class struct {
	ID          int       `json:"id"`
	TeacherID   int       `json:"teacher_id"`
	ClassName   string    `json:"name"`
	ClassCode   string    `json:"code"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClassWithCount is a class annotated with its current enrollment count.
type ClassWithCount struct {
	Class
	StudentCount int `json:"student_count"`
}

// CreateClassRequest is the payload for creating a class. The join code
// is always generated server-side.
type CreateClassRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// UpdateClassRequest is the partial-update payload for a class.
// Nil fields are left untouched.
type UpdateClassRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// JoinClassRequest is the payload for a student joining a class by code.
type JoinClassRequest struct {
	Code string `json:"code" binding:"required,min=6,max=20"`
}
