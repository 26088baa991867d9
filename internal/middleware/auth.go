package middleware

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deskhive/deskhive/internal/apierrors"
	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/permissions"
	"github.com/deskhive/deskhive/internal/service"
)

// debugLog logs only when LOG_LEVEL=debug
func debugLog(format string, v ...interface{}) {
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.Printf(format, v...)
	}
}

// SessionValidator resolves a bearer token to the caller's identity.
// This breaks the import cycle between api and middleware packages.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.Identity, error)
}

// extractToken pulls the session token from the Authorization header or,
// as a fallback for browser clients, the session cookie.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie("session_token"); err == nil {
		return cookie
	}
	return ""
}

// SessionAuth authenticates requests with an opaque session token and stores
// the resolved identity in the request context.
func SessionAuth(validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			apierrors.Error(c, apierrors.CodeUnauthorized)
			c.Abort()
			return
		}

		identity, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSessionInvalid):
				apierrors.Error(c, apierrors.CodeSessionInvalid)
			case errors.Is(err, service.ErrAccountInactive):
				apierrors.Error(c, apierrors.CodeAccountInactive)
			default:
				debugLog("session validation error: %v", err)
				apierrors.Error(c, apierrors.CodeInternalError)
			}
			c.Abort()
			return
		}

		c.Set("identity", identity)
		c.Set("user_id", identity.UserID)
		c.Set("user_email", identity.Email)
		c.Set("user_role", string(identity.Role))
		c.Next()
	}
}

// RequireCapability rejects requests whose authenticated role lacks the
// given capability. Must run after SessionAuth.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.ParseRole(c.GetString("user_role"))
		if !permissions.Has(role, capability) {
			apierrors.Error(c, apierrors.CodeForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Identity returns the authenticated identity set by SessionAuth, or nil.
func Identity(c *gin.Context) *models.Identity {
	if v, ok := c.Get("identity"); ok {
		if id, ok := v.(*models.Identity); ok {
			return id
		}
	}
	return nil
}
