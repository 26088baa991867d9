// Package api exposes the JSON HTTP surface: authentication, users,
// tickets, companies, activity and the mail ingestion trigger.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deskhive/deskhive/internal/apierrors"
	"github.com/deskhive/deskhive/internal/mail"
	"github.com/deskhive/deskhive/internal/middleware"
	"github.com/deskhive/deskhive/internal/permissions"
	"github.com/deskhive/deskhive/internal/repository"
	"github.com/deskhive/deskhive/internal/service"
)

// Handlers bundles the services the HTTP surface dispatches to. Ingestor is
// nil when no mailbox is configured; the poll endpoint then reports that.
type Handlers struct {
	Auth      *service.AuthService
	Sessions  *service.SessionService
	Users     *service.UserService
	Tickets   *service.TicketService
	Companies repository.CompanyRepository
	Activity  *service.ActivityLogger
	Ingestor  *mail.Ingestor

	LoginRateLimit int // requests per hour per IP on the login route
}

// NewRouter builds the gin engine with the full route table.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	loginLimit := h.LoginRateLimit
	if loginLimit <= 0 {
		loginLimit = 60
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", middleware.RateLimitByIP(loginLimit), h.HandleLogin)
		v1.POST("/auth/logout", h.HandleLogout)

		authed := v1.Group("", middleware.SessionAuth(h.Sessions))
		{
			authed.GET("/auth/me", h.HandleMe)

			users := authed.Group("/users", middleware.RequireCapability(permissions.UserManagement))
			{
				users.POST("", h.HandleCreateUser)
				users.GET("", h.HandleListUsers)
				users.GET("/:id", h.HandleGetUser)
				users.PATCH("/:id", h.HandleUpdateUser)
				users.DELETE("/:id", h.HandleDeleteUser)
			}

			tickets := authed.Group("/tickets", middleware.RequireCapability(permissions.TicketManagement))
			{
				tickets.POST("", h.HandleCreateTicket)
				tickets.GET("", h.HandleListTickets)
				tickets.GET("/:id", h.HandleGetTicket)
				tickets.PATCH("/:id", h.HandleUpdateTicket)
				tickets.POST("/:id/close", h.HandleCloseTicket)
				tickets.DELETE("/:id", h.HandleDeleteTicket)
			}

			companies := authed.Group("/companies", middleware.RequireCapability(permissions.UserManagement))
			{
				companies.POST("", h.HandleCreateCompany)
				companies.GET("", h.HandleListCompanies)
				companies.GET("/:id", h.HandleGetCompany)
				companies.PUT("/:id", h.HandleUpdateCompany)
				companies.DELETE("/:id", h.HandleDeleteCompany)
			}

			authed.GET("/activity", h.HandleListActivity)

			authed.POST("/mail/poll",
				middleware.RequireCapability(permissions.AdminAccess), h.HandlePollMail)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		apierrors.Error(c, apierrors.CodeNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		apierrors.Error(c, apierrors.CodeMethodNotAllowed)
	})

	return router
}
