// Package apierrors provides structured API error codes and responses.
// All codes are namespaced (e.g., "core:unauthorized", "mail:connection_failed").
package apierrors

import "net/http"

// Core error codes - registered automatically at init
const (
	// Authentication & Authorization
	CodeUnauthorized       = "core:unauthorized"
	CodeForbidden          = "core:forbidden"
	CodeInvalidCredentials = "core:invalid_credentials"
	CodeAccountInactive    = "core:account_inactive"
	CodeSessionInvalid     = "core:session_invalid"

	// Request errors
	CodeInvalidRequest   = "core:invalid_request"
	CodeValidationFailed = "core:validation_failed"
	CodeInvalidID        = "core:invalid_id"
	CodeMethodNotAllowed = "core:method_not_allowed"

	// Resource errors
	CodeNotFound = "core:not_found"
	CodeConflict = "core:conflict"

	// Rate limiting
	CodeRateLimited = "core:rate_limited"

	// Server errors
	CodeInternalError       = "core:internal_error"
	CodeUpstreamUnavailable = "core:upstream_unavailable"

	// Mail ingestion
	CodeMailConnectionFailed = "mail:connection_failed"
	CodeMailAuthFailed       = "mail:auth_failed"
)

// coreErrors defines all error codes with their default messages and HTTP status
var coreErrors = []ErrorCode{
	// Authentication & Authorization
	{Code: CodeUnauthorized, Message: "Authentication required", HTTPStatus: http.StatusUnauthorized},
	{Code: CodeForbidden, Message: "Permission denied", HTTPStatus: http.StatusForbidden},
	{Code: CodeInvalidCredentials, Message: "Invalid email or password", HTTPStatus: http.StatusUnauthorized},
	{Code: CodeAccountInactive, Message: "Account is inactive", HTTPStatus: http.StatusUnauthorized},
	{Code: CodeSessionInvalid, Message: "Invalid or expired session", HTTPStatus: http.StatusUnauthorized},

	// Request errors
	{Code: CodeInvalidRequest, Message: "Invalid request body", HTTPStatus: http.StatusBadRequest},
	{Code: CodeValidationFailed, Message: "Request validation failed", HTTPStatus: http.StatusBadRequest},
	{Code: CodeInvalidID, Message: "Invalid ID format", HTTPStatus: http.StatusBadRequest},
	{Code: CodeMethodNotAllowed, Message: "Method not allowed", HTTPStatus: http.StatusMethodNotAllowed},

	// Resource errors
	{Code: CodeNotFound, Message: "Resource not found", HTTPStatus: http.StatusNotFound},
	{Code: CodeConflict, Message: "Resource conflict", HTTPStatus: http.StatusConflict},

	// Rate limiting
	{Code: CodeRateLimited, Message: "Too many requests", HTTPStatus: http.StatusTooManyRequests},

	// Server errors
	{Code: CodeInternalError, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError},
	{Code: CodeUpstreamUnavailable, Message: "Upstream service unavailable", HTTPStatus: http.StatusInternalServerError},

	// Mail ingestion. Auth failures against the mailbox are reported as 400:
	// they are attributable to operator-supplied credentials, not our runtime.
	{Code: CodeMailConnectionFailed, Message: "Mail server connection failed", HTTPStatus: http.StatusInternalServerError},
	{Code: CodeMailAuthFailed, Message: "Mail server rejected credentials", HTTPStatus: http.StatusBadRequest},
}

func init() {
	// Register all core error codes
	for _, e := range coreErrors {
		Registry.Register(e)
	}
}
