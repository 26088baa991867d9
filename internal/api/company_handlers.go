package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskhive/deskhive/internal/apierrors"
	"github.com/deskhive/deskhive/internal/models"
)

// HandleCreateCompany handles POST /api/v1/companies
func (h *Handlers) HandleCreateCompany(c *gin.Context) {
	var req struct {
		Name         string  `json:"name" binding:"required"`
		Domain       *string `json:"domain"`
		ContactEmail *string `json:"contact_email"`
		ContactPhone *string `json:"contact_phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ErrorWithMessage(c, apierrors.CodeInvalidRequest, "name is required")
		return
	}

	company := &models.Company{
		Name:         req.Name,
		Domain:       req.Domain,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		IsActive:     true,
	}
	if err := h.Companies.Create(c.Request.Context(), company); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": company})
}

// HandleGetCompany handles GET /api/v1/companies/:id
func (h *Handlers) HandleGetCompany(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	company, err := h.Companies.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": company})
}

// HandleListCompanies handles GET /api/v1/companies
func (h *Handlers) HandleListCompanies(c *gin.Context) {
	companies, err := h.Companies.List(c.Request.Context(), queryLimit(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if companies == nil {
		companies = []*models.Company{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": companies})
}

// HandleUpdateCompany handles PUT /api/v1/companies/:id
func (h *Handlers) HandleUpdateCompany(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	current, err := h.Companies.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	var req struct {
		Name         *string `json:"name"`
		Domain       *string `json:"domain"`
		ContactEmail *string `json:"contact_email"`
		ContactPhone *string `json:"contact_phone"`
		IsActive     *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Domain != nil {
		current.Domain = req.Domain
	}
	if req.ContactEmail != nil {
		current.ContactEmail = req.ContactEmail
	}
	if req.ContactPhone != nil {
		current.ContactPhone = req.ContactPhone
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}

	if err := h.Companies.Update(c.Request.Context(), current); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": current})
}

// HandleDeleteCompany handles DELETE /api/v1/companies/:id
func (h *Handlers) HandleDeleteCompany(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Companies.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
