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

// AssignmentHandler handles teacher-facing assignment management.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
	submissionService *service.SubmissionService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *service.AssignmentService, submissionService *service.SubmissionService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService, submissionService: submissionService}
}

// CreateAssignment godoc
// POST /api/v1/teacher/classes/:class_id/assignments
// Creates an assignment in a class the caller owns. The deadline must lie
// in the future and the language must be supported.
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classID, err := strconv.Atoi(c.Param("class_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), classID, claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"assignment": assignment})
}

// GetAssignment godoc
// GET /api/v1/teacher/assignments/:assignment_id
// Reads an assignment in a class the caller owns.
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	assignmentID, err := strconv.Atoi(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	assignment, err := h.assignmentService.Get(c.Request.Context(), assignmentID)
	if err != nil {
		failFromService(c, err)
		return
	}
	if err := h.assignmentService.Authorize(c.Request.Context(), assignment.ClassID, claims.UserID); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignment": assignment})
}

// UpdateAssignment godoc
// PATCH /api/v1/teacher/assignments/:assignment_id
// Applies a partial update. A body with no recognized fields is rejected.
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	assignmentID, err := strconv.Atoi(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment, err := h.assignmentService.Update(c.Request.Context(), assignmentID, claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignment": assignment})
}

// DeleteAssignment godoc
// DELETE /api/v1/teacher/assignments/:assignment_id
// Soft-deletes an assignment; its submission history survives.
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	assignmentID, err := strconv.Atoi(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), assignmentID, claims.UserID); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "assignment deleted successfully"})
}

// ListSubmissions godoc
// GET /api/v1/teacher/assignments/:assignment_id/submissions?latest_only=true
// Lists submissions for an assignment in a class the caller owns. With
// latest_only, one row per student.
func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	assignmentID, err := strconv.Atoi(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Only the owning teacher may read the submission list.
	assignment, err := h.assignmentService.Get(c.Request.Context(), assignmentID)
	if err != nil {
		failFromService(c, err)
		return
	}
	if err := h.assignmentService.Authorize(c.Request.Context(), assignment.ClassID, claims.UserID); err != nil {
		failFromService(c, err)
		return
	}

	latestOnly := c.Query("latest_only") == "true"
	submissions, err := h.submissionService.ListByAssignment(c.Request.Context(), assignmentID, latestOnly)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submissions": submissions})
}
