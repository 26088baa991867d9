package api

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deskhive/deskhive/internal/apierrors"
	"github.com/deskhive/deskhive/internal/repository"
	"github.com/deskhive/deskhive/internal/service"
)

var apiLog = log.New(log.Writer(), "[API] ", log.LstdFlags)

// writeServiceError maps service and repository sentinels onto registered
// API error codes. Unrecognized errors become a generic 500; the underlying
// error goes to the log, never to the client.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		apierrors.Error(c, apierrors.CodeNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		apierrors.Error(c, apierrors.CodeConflict)
	case errors.Is(err, service.ErrValidation):
		apierrors.ErrorWithMessage(c, apierrors.CodeValidationFailed, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		apierrors.Error(c, apierrors.CodeInvalidCredentials)
	case errors.Is(err, service.ErrAccountInactive):
		apierrors.Error(c, apierrors.CodeAccountInactive)
	case errors.Is(err, service.ErrSessionInvalid):
		apierrors.Error(c, apierrors.CodeSessionInvalid)
	case errors.Is(err, service.ErrEmailTaken):
		apierrors.ErrorWithMessage(c, apierrors.CodeConflict, "email already in use")
	case errors.Is(err, service.ErrLastAdmin):
		apierrors.ErrorWithMessage(c, apierrors.CodeConflict, "cannot remove the last admin account")
	case errors.Is(err, service.ErrBadTransition):
		apierrors.ErrorWithMessage(c, apierrors.CodeValidationFailed, err.Error())
	case isSchemaMissing(err):
		apierrors.ErrorWithMessage(c, apierrors.CodeUpstreamUnavailable,
			"database schema missing; run migrations")
	default:
		apiLog.Printf("internal error: %v", err)
		apierrors.Error(c, apierrors.CodeInternalError)
	}
}

// isSchemaMissing detects the "table not found" class of database errors so a
// misconfigured deployment gets a corrective hint instead of a bare 500.
func isSchemaMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || // go-sqlite3
		strings.Contains(msg, "does not exist") // lib/pq: relation "x" does not exist
}

// paramID parses the :id route parameter. Writes the error response itself;
// callers return immediately on ok == false.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		apierrors.Error(c, apierrors.CodeInvalidID)
		return 0, false
	}
	return id, true
}

// actorID returns the authenticated user id as a nullable actor reference.
func actorID(c *gin.Context) *int {
	if id, ok := c.Get("user_id"); ok {
		if n, ok := id.(int); ok {
			return &n
		}
	}
	return nil
}

// queryLimit parses an optional ?limit= parameter.
func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}
