package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deskhive/deskhive/internal/apierrors"
	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/service"
)

// HandleCreateTicket handles POST /api/v1/tickets
func (h *Handlers) HandleCreateTicket(c *gin.Context) {
	var req struct {
		Subject       string  `json:"subject" binding:"required"`
		Body          string  `json:"body"`
		Priority      string  `json:"priority"`
		Category      string  `json:"category"`
		CustomerName  *string `json:"customer_name"`
		CustomerEmail *string `json:"customer_email"`
		CompanyID     *int    `json:"company_id"`
		AssigneeID    *int    `json:"assignee_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ErrorWithMessage(c, apierrors.CodeInvalidRequest, "subject is required")
		return
	}

	ticket, err := h.Tickets.Create(c.Request.Context(), actorID(c), service.CreateTicketInput{
		Subject:       req.Subject,
		Body:          req.Body,
		Priority:      req.Priority,
		Category:      req.Category,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CompanyID:     req.CompanyID,
		AssigneeID:    req.AssigneeID,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": ticket})
}

// HandleGetTicket handles GET /api/v1/tickets/:id
func (h *Handlers) HandleGetTicket(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ticket, err := h.Tickets.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ticket})
}

// HandleListTickets handles GET /api/v1/tickets with optional status,
// priority, assignee_id, created_by and limit query filters.
func (h *Handlers) HandleListTickets(c *gin.Context) {
	filter := models.TicketFilter{Limit: queryLimit(c)}
	if s := c.Query("status"); s != "" {
		status, ok := models.ParseTicketStatus(s)
		if !ok {
			apierrors.ErrorWithMessage(c, apierrors.CodeValidationFailed, "unknown status filter")
			return
		}
		filter.Status = status
	}
	if p := c.Query("priority"); p != "" {
		priority, ok := models.ParseTicketPriority(p)
		if !ok {
			apierrors.ErrorWithMessage(c, apierrors.CodeValidationFailed, "unknown priority filter")
			return
		}
		filter.Priority = priority
	}
	if a := c.Query("assignee_id"); a != "" {
		n, err := strconv.Atoi(a)
		if err != nil {
			apierrors.Error(c, apierrors.CodeInvalidID)
			return
		}
		filter.AssigneeID = n
	}
	if cb := c.Query("created_by"); cb != "" {
		n, err := strconv.Atoi(cb)
		if err != nil {
			apierrors.Error(c, apierrors.CodeInvalidID)
			return
		}
		filter.CreatedBy = n
	}

	tickets, err := h.Tickets.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tickets})
}

// HandleUpdateTicket handles PATCH /api/v1/tickets/:id
func (h *Handlers) HandleUpdateTicket(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req struct {
		Subject    *string `json:"subject"`
		Body       *string `json:"body"`
		Status     *string `json:"status"`
		Priority   *string `json:"priority"`
		Category   *string `json:"category"`
		AssigneeID *int    `json:"assignee_id"`
		CompanyID  *int    `json:"company_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	patch := models.TicketPatch{
		Subject:    req.Subject,
		Body:       req.Body,
		Category:   req.Category,
		AssigneeID: req.AssigneeID,
		CompanyID:  req.CompanyID,
	}
	if req.Status != nil {
		status, ok := models.ParseTicketStatus(*req.Status)
		if !ok {
			apierrors.ErrorWithMessage(c, apierrors.CodeValidationFailed, "unknown status")
			return
		}
		patch.Status = &status
	}
	if req.Priority != nil {
		priority, ok := models.ParseTicketPriority(*req.Priority)
		if !ok {
			apierrors.ErrorWithMessage(c, apierrors.CodeValidationFailed, "unknown priority")
			return
		}
		patch.Priority = &priority
	}

	ticket, err := h.Tickets.Update(c.Request.Context(), actorID(c), id, patch)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ticket})
}

// HandleCloseTicket handles POST /api/v1/tickets/:id/close
func (h *Handlers) HandleCloseTicket(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ticket, err := h.Tickets.Close(c.Request.Context(), actorID(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ticket})
}

// HandleDeleteTicket handles DELETE /api/v1/tickets/:id
func (h *Handlers) HandleDeleteTicket(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Tickets.Delete(c.Request.Context(), actorID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
