package handler

import (
	"errors"
	"net/http"

	"github.com/classpad/classpad-backend/internal/response"
	"github.com/classpad/classpad-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// failFromService maps service sentinel errors to an HTTP status and a
// typed error code. Classification is by error identity only; message text
// is never inspected.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrUnauthorized):
		response.Fail(c, http.StatusForbidden, response.ErrNotResourceOwner)
	case errors.Is(err, service.ErrClassInactive):
		response.Fail(c, http.StatusGone, response.ErrClassInactive)
	case errors.Is(err, service.ErrAssignmentInactive):
		response.Fail(c, http.StatusGone, response.ErrAssignmentInactive)
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyEnrolled)
	case errors.Is(err, service.ErrNotEnrolled):
		response.Fail(c, http.StatusConflict, response.ErrNotEnrolled)
	case errors.Is(err, service.ErrAlreadyDeleted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyDeleted)
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		response.Fail(c, http.StatusBadRequest, response.ErrNoFieldsToUpdate)
	case errors.Is(err, service.ErrInvalidDeadline):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidDeadline)
	case errors.Is(err, service.ErrInvalidLanguage):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidLanguage)
	case errors.Is(err, service.ErrDeadlinePassed):
		response.Fail(c, http.StatusConflict, response.ErrDeadlinePassed)
	case errors.Is(err, service.ErrResubmissionNotAllowed):
		response.Fail(c, http.StatusConflict, response.ErrResubmission)
	case errors.Is(err, service.ErrInvalidFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidFileType)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, service.ErrFileEmpty):
		response.Fail(c, http.StatusBadRequest, response.ErrFileEmpty)
	case errors.Is(err, service.ErrStorageFailure):
		response.Fail(c, http.StatusInternalServerError, response.ErrStorageFailure)
	case errors.Is(err, service.ErrUserExists):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrSessionAlreadyActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionActive)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
