package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/classpad/classpad-backend/internal/response"
	"github.com/classpad/classpad-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

// FileHandler serves stored submission files to holders of a valid signed
// URL. No session is required; the HMAC signature is the credential.
type FileHandler struct {
	store *storage.LocalStore
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(store *storage.LocalStore) *FileHandler {
	return &FileHandler{store: store}
}

// Download godoc
// GET /files/*key?exp=...&sig=...
// Verifies the signature and expiry, then streams the file.
func (h *FileHandler) Download(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	exp, err := strconv.ParseInt(c.Query("exp"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidSignature)
		return
	}

	if err := h.store.Verify(key, exp, c.Query("sig")); err != nil {
		switch {
		case errors.Is(err, storage.ErrExpired):
			response.Fail(c, http.StatusGone, response.ErrLinkExpired)
		default:
			response.Fail(c, http.StatusForbidden, response.ErrInvalidSignature)
		}
		return
	}

	path, err := h.store.Open(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.FileAttachment(path, key[strings.LastIndex(key, "/")+1:])
}
