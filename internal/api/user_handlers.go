package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskhive/deskhive/internal/apierrors"
	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/service"
)

// HandleCreateUser handles POST /api/v1/users
func (h *Handlers) HandleCreateUser(c *gin.Context) {
	var req struct {
		Email      string  `json:"email" binding:"required"`
		Password   string  `json:"password" binding:"required"`
		FullName   string  `json:"full_name" binding:"required"`
		Role       string  `json:"role" binding:"required"`
		CompanyID  *int    `json:"company_id"`
		Department *string `json:"department"`
		JobTitle   *string `json:"job_title"`
		Phone      *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ErrorWithMessage(c, apierrors.CodeInvalidRequest,
			"email, password, full_name and role are required")
		return
	}

	user, err := h.Users.Create(c.Request.Context(), actorID(c), service.CreateUserInput{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       req.Role,
		CompanyID:  req.CompanyID,
		Department: req.Department,
		JobTitle:   req.JobTitle,
		Phone:      req.Phone,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": user.Profile()})
}

// HandleGetUser handles GET /api/v1/users/:id
func (h *Handlers) HandleGetUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user.Profile()})
}

// HandleListUsers handles GET /api/v1/users
func (h *Handlers) HandleListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), queryLimit(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	profiles := make([]models.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": profiles})
}

// HandleUpdateUser handles PATCH /api/v1/users/:id
func (h *Handlers) HandleUpdateUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req struct {
		Email      *string `json:"email"`
		Password   *string `json:"password"`
		FullName   *string `json:"full_name"`
		Role       *string `json:"role"`
		IsActive   *bool   `json:"is_active"`
		CompanyID  *int    `json:"company_id"`
		Department *string `json:"department"`
		JobTitle   *string `json:"job_title"`
		Phone      *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	patch := models.UserPatch{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		IsActive:   req.IsActive,
		CompanyID:  req.CompanyID,
		Department: req.Department,
		JobTitle:   req.JobTitle,
		Phone:      req.Phone,
	}
	if req.Role != nil {
		role := models.ParseRole(*req.Role)
		patch.Role = &role
	}

	user, err := h.Users.Update(c.Request.Context(), actorID(c), id, patch)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user.Profile()})
}

// HandleDeleteUser handles DELETE /api/v1/users/:id
func (h *Handlers) HandleDeleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), actorID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
