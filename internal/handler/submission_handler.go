package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/classpad/classpad-backend/internal/middleware"
	"github.com/classpad/classpad-backend/internal/model"
	"github.com/classpad/classpad-backend/internal/response"
	"github.com/classpad/classpad-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// SubmissionHandler handles student file submission and retrieval.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// Submit godoc
// POST /api/v1/student/assignments/:assignment_id/submissions
// Accepts a multipart "file" field and records it as the next submission
// version for the caller.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	assignmentID, err := strconv.Atoi(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Cap the multipart read one byte past the limit so an oversized file
	// is rejected by policy, not by a truncated read.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, model.MaxSubmissionBytes+1024*1024)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), assignmentID, claims.UserID, header.Filename, data)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"submission": submission})
}

// History godoc
// GET /api/v1/student/assignments/:assignment_id/submissions
// Lists the caller's submissions for one assignment, oldest first.
func (h *SubmissionHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	assignmentID, err := strconv.Atoi(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	submissions, err := h.submissionService.History(c.Request.Context(), assignmentID, claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submissions": submissions})
}

// DownloadURL godoc
// GET /api/v1/submissions/:submission_id/download
// Issues a time-limited signed download URL. Allowed for the submitting
// student and the teacher owning the class.
func (h *SubmissionHandler) DownloadURL(c *gin.Context) {
	claims := middleware.GetClaims(c)
	submissionID, err := strconv.Atoi(c.Param("submission_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	url, err := h.submissionService.DownloadURL(c.Request.Context(), submissionID, claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}
