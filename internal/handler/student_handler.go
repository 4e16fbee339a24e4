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

// StudentHandler handles the student-facing portal: enrollment by class
// code and read access to enrolled-class content.
type StudentHandler struct {
	enrollmentService *service.EnrollmentService
	classService      *service.ClassService
	submissionService *service.SubmissionService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(
	enrollmentService *service.EnrollmentService,
	classService *service.ClassService,
	submissionService *service.SubmissionService,
) *StudentHandler {
	return &StudentHandler{
		enrollmentService: enrollmentService,
		classService:      classService,
		submissionService: submissionService,
	}
}

// JoinClass godoc
// POST /api/v1/student/classes/join
// Enrolls the caller into the class matching the submitted code.
func (h *StudentHandler) JoinClass(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.JoinClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.enrollmentService.Join(c.Request.Context(), claims.UserID, req.Code)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// LeaveClass godoc
// DELETE /api/v1/student/classes/:class_id/membership
// Removes the caller's enrollment. Leaving twice is a conflict.
func (h *StudentHandler) LeaveClass(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classID, err := strconv.Atoi(c.Param("class_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.enrollmentService.Leave(c.Request.Context(), claims.UserID, classID); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "left class"})
}

// ListClasses godoc
// GET /api/v1/student/classes
// Lists the caller's enrolled classes with enrollment counts.
func (h *StudentHandler) ListClasses(c *gin.Context) {
	claims := middleware.GetClaims(c)

	classes, err := h.enrollmentService.ListClasses(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// ListClassAssignments godoc
// GET /api/v1/student/classes/:class_id/assignments
// Lists assignments of a class the caller is enrolled in.
func (h *StudentHandler) ListClassAssignments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classID, err := strconv.Atoi(c.Param("class_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.enrollmentService.RequireEnrollment(c.Request.Context(), claims.UserID, classID); err != nil {
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

// ListSubmissions godoc
// GET /api/v1/student/submissions?latest_only=true
// Lists the caller's submissions across assignments.
func (h *StudentHandler) ListSubmissions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	latestOnly := c.Query("latest_only") == "true"

	submissions, err := h.submissionService.ListByStudent(c.Request.Context(), claims.UserID, latestOnly)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submissions": submissions})
}
