package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deskhive/deskhive/internal/apierrors"
	"github.com/deskhive/deskhive/internal/middleware"
)

// HandleLogin handles POST /api/v1/auth/login
func (h *Handlers) HandleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ErrorWithMessage(c, apierrors.CodeInvalidRequest, "email and password are required")
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password,
		c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// HandleLogout handles POST /api/v1/auth/logout
func (h *Handlers) HandleLogout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		apierrors.Error(c, apierrors.CodeUnauthorized)
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), token); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleMe handles GET /api/v1/auth/me. Runs behind SessionAuth, so reaching
// it means the token is valid; it just echoes the resolved identity.
func (h *Handlers) HandleMe(c *gin.Context) {
	identity := middleware.Identity(c)
	if identity == nil {
		apierrors.Error(c, apierrors.CodeUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": identity})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie("session_token"); err == nil {
		return cookie
	}
	return ""
}
