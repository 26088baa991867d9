package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deskhive/deskhive/internal/apierrors"
	"github.com/deskhive/deskhive/internal/models"
)

// HandleListActivity handles GET /api/v1/activity?actor_id=N&limit=M.
// Without actor_id it lists the caller's own trail, so agents can review
// their history while only admins browse other actors.
func (h *Handlers) HandleListActivity(c *gin.Context) {
	actor := 0
	if a := c.Query("actor_id"); a != "" {
		n, err := strconv.Atoi(a)
		if err != nil || n <= 0 {
			apierrors.Error(c, apierrors.CodeInvalidID)
			return
		}
		actor = n
	}

	self := actorID(c)
	if actor == 0 {
		if self == nil {
			apierrors.Error(c, apierrors.CodeUnauthorized)
			return
		}
		actor = *self
	} else if self == nil || *self != actor {
		role := models.ParseRole(c.GetString("user_role"))
		if role != models.RoleAdmin {
			apierrors.Error(c, apierrors.CodeForbidden)
			return
		}
	}

	entries, err := h.Activity.ListByActor(c.Request.Context(), actor, queryLimit(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if entries == nil {
		entries = []*models.ActivityEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
}
