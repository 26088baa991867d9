package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskhive/deskhive/internal/apierrors"
	"github.com/deskhive/deskhive/internal/mail/connector"
)

// HandlePollMail handles POST /api/v1/mail/poll. Admin-only on-demand
// ingestion run, equivalent to the scheduled poll.
func (h *Handlers) HandlePollMail(c *gin.Context) {
	if h.Ingestor == nil {
		apierrors.ErrorWithMessage(c, apierrors.CodeUpstreamUnavailable,
			"mail ingestion is not configured")
		return
	}

	summary, err := h.Ingestor.Poll(c.Request.Context())
	if err != nil {
		var authErr *connector.AuthError
		var connErr *connector.ConnectionError
		switch {
		case errors.As(err, &authErr):
			apierrors.ErrorWithMessage(c, apierrors.CodeMailAuthFailed,
				"mailbox rejected the configured credentials")
		case errors.As(err, &connErr):
			apierrors.ErrorWithMessage(c, apierrors.CodeMailConnectionFailed, connErr.Error())
		default:
			// Partial failure: some messages did not persist. The summary
			// still describes what succeeded.
			c.JSON(http.StatusOK, gin.H{"success": true, "data": summary, "warning": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}
