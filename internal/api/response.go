package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/talkie/internal/coach"
	"github.com/abhisek/talkie/internal/session"
	"github.com/abhisek/talkie/internal/store"
	"github.com/abhisek/talkie/internal/tutor"
)

// APIError is the body of every failed request.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// classify maps a domain error to a status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, store.ErrExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, session.ErrExpired):
		return http.StatusConflict, "session_expired"
	case errors.Is(err, tutor.ErrLocked):
		return http.StatusForbidden, "mode_locked"
	case errors.Is(err, tutor.ErrUnknownMode):
		return http.StatusBadRequest, "unknown_mode"
	case errors.Is(err, coach.ErrEmptyInput):
		return http.StatusBadRequest, "empty_input"
	case errors.Is(err, tutor.ErrNoContent):
		return http.StatusNotFound, "no_content"
	case errors.Is(err, coach.ErrUnavailable):
		return http.StatusServiceUnavailable, "coach_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail responds with the classified error. Server-side failures are
// logged and their details withheld.
func (h *Handler) fail(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		err = errors.New("internal error")
	}
	respondError(c, status, code, err)
}
