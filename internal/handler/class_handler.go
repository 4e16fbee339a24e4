package handler

import (
	"net/http"
	"strconv"

	"github.com/classpad/classpad-backend/internal/middleware"
	"github.com/classpad/classpad-backend/internal/model"
	"github.com/classpad/classpad-backend/internal/response"
	"github.com/classpad/classpad-backend/internal/service"
	"github.com/classpad/classpad-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ClassHandler handles teacher-facing class management.
type ClassHandler struct {
	classService      *service.ClassService
	enrollmentService *service.EnrollmentService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService, enrollmentService *service.EnrollmentService) *ClassHandler {
	return &ClassHandler{classService: classService, enrollmentService: enrollmentService}
}

// CreateClass godoc
// POST /api/v1/teacher/classes
// Creates a class with a generated join code.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// ListClasses godoc
// GET /api/v1/teacher/classes?include_inactive=true
// Lists the caller's classes with enrollment counts. Active classes only
// unless include_inactive is set.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	claims := middleware.GetClaims(c)
	activeOnly := c.Query("include_inactive") != "true"

	classes, err := h.classService.ListByTeacher(c.Request.Context(), claims.UserID, activeOnly)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// GetClass godoc
// GET /api/v1/teacher/classes/:class_id
func (h *ClassHandler) GetClass(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classID, err := strconv.Atoi(c.Param("class_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	class, err := h.classService.GetByID(c.Request.Context(), classID, claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// UpdateClass godoc
// PATCH /api/v1/teacher/classes/:class_id
// Applies a partial update; omitted fields keep their value.
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classID, err := strconv.Atoi(c.Param("class_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Update(c.Request.Context(), classID, claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// DeleteClass godoc
// DELETE /api/v1/teacher/classes/:class_id
// Soft-deletes a class; assignments and submission history survive.
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classID, err := strconv.Atoi(c.Param("class_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.classService.Delete(c.Request.Context(), classID, claims.UserID); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "class deleted successfully"})
}

// ListClassStudents godoc
// GET /api/v1/teacher/classes/:class_id/students
// Lists the roster of a class the caller owns, oldest enrollment first.
func (h *ClassHandler) ListClassStudents(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classID, err := strconv.Atoi(c.Param("class_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Ownership check piggybacks on GetByID.
	if _, err := h.classService.GetByID(c.Request.Context(), classID, claims.UserID); err != nil {
		failFromService(c, err)
		return
	}

	students, err := h.classService.ListStudents(c.Request.Context(), classID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// ListClassAssignments godoc
// GET /api/v1/teacher/classes/:class_id/assignments
func (h *ClassHandler) ListClassAssignments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classID, err := strconv.Atoi(c.Param("class_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.classService.GetByID(c.Request.Context(), classID, claims.UserID); err != nil {
		failFromService(c, err)
		return
	}

	assignments, err := h.classService.ListAssignments(c.Request.Context(), classID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignments": assignments})
}

// RemoveStudent godoc
// DELETE /api/v1/teacher/classes/:class_id/students/:student_id
// Removes a student from a class the caller owns. History is untouched.
func (h *ClassHandler) RemoveStudent(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classID, err := strconv.Atoi(c.Param("class_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.enrollmentService.RemoveStudent(c.Request.Context(), classID, studentID, claims.UserID); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "student removed from class"})
}
