package api

import (
	"database/sql"
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "sevaportal/internal/config"
	h "sevaportal/internal/http/handlers"
	"sevaportal/internal/http/middleware"
	"sevaportal/internal/notify"
	"sevaportal/internal/services"
)

// NewRouter wires services onto the gin engine. Three route families:
// public catalog/search, citizen (token required) and admin (token plus
// department scoping inside the services).
func NewRouter(env intconfig.Env, db *sql.DB) *gin.Engine {
	notifier := notify.ForEnv(env)

	auth := services.NewAuthService(env, db)
	topology := services.NewTopologyService(db)
	bookings := services.NewBookingService(env, db)
	tickets := services.NewTicketService(db)
	applications := services.NewApplicationService(db, notifier)
	grievances := services.NewGrievanceService(db, notifier)

	authH := h.NewAuthHandler(auth)
	topologyH := h.NewTopologyHandler(topology)
	busH := h.NewBusHandler(topology, bookings)
	bookingH := h.NewBookingHandler(bookings, tickets)
	appH := h.NewApplicationHandler(applications)
	adminAppH := h.NewAdminApplicationHandler(applications, bookings)
	grievanceH := h.NewGrievanceHandler(grievances)
	systemH := h.NewSystemHandler(db)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", systemH.Health)
		api.GET("/db-check", systemH.DBCheck)

		// Auth
		authGroup := api.Group("/auth")
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/admin/login", authH.AdminLogin)

		// Public catalog and search
		api.GET("/stops", topologyH.ListStops)
		api.GET("/routes", topologyH.ListRoutes)
		api.GET("/routes/:id/variants", topologyH.ListVariants)
		api.GET("/buses", busH.List)
		api.GET("/buses/search", busH.Search)
		api.GET("/buses/:id", busH.Get)
		api.GET("/buses/:id/booked-seats", busH.BookedSeats)
		api.GET("/departments", appH.Departments)
		api.GET("/services", appH.Services)

		// Citizen routes
		citizen := api.Group("")
		citizen.Use(middleware.CitizenAuth(auth))
		{
			citizen.GET("/profile", authH.Profile)

			citizen.POST("/bookings", bookingH.Book)
			citizen.GET("/bookings/upcoming", bookingH.Upcoming)
			citizen.GET("/bookings/past", bookingH.Past)
			citizen.GET("/bookings/:id/e-ticket", bookingH.ETicket)

			citizen.POST("/applications", appH.Apply)
			citizen.GET("/applications", appH.ListMine)
			citizen.POST("/applications/:id/documents", appH.UploadDocument)
			citizen.POST("/applications/:id/pay", appH.Pay)

			citizen.POST("/grievances", grievanceH.Create)
			citizen.GET("/grievances", grievanceH.ListMine)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(auth))
		{
			admin.GET("/profile", authH.AdminProfile)
			admin.GET("/dashboard", adminAppH.Dashboard)
			admin.GET("/payments", adminAppH.PayHistory)

			admin.GET("/applications", adminAppH.List)
			admin.GET("/applications/:id", adminAppH.Detail)
			admin.PUT("/applications/:id/status", adminAppH.UpdateStatus)
			admin.GET("/documents/pending", adminAppH.PendingDocuments)
			admin.PUT("/documents/:id/verify", adminAppH.VerifyDocument)

			admin.GET("/grievances", grievanceH.AdminList)
			admin.PUT("/grievances/:id/resolve", grievanceH.Resolve)

			// Network management
			admin.POST("/stops", topologyH.AddStop)
			admin.PUT("/stops/:id", topologyH.RenameStop)
			admin.DELETE("/stops/:id", topologyH.DeleteStop)
			admin.POST("/routes", topologyH.AddRoute)
			admin.DELETE("/routes/:id", topologyH.DeleteRoute)
			admin.POST("/routes/:id/variants", topologyH.AddVariant)
			admin.PUT("/routes/:id/variants/:variantId", topologyH.EditVariant)
			admin.DELETE("/routes/:id/variants/:variantId", topologyH.DeleteVariant)
			admin.POST("/buses", busH.Add)
			admin.DELETE("/buses/:id", busH.Delete)
			admin.POST("/buses/:id/schedule", busH.SetSchedule)
			admin.PUT("/buses/:id/schedule", busH.ReplaceSchedule)
			admin.DELETE("/buses/:id/schedule", busH.DeleteSchedule)

			// Admin accounts, super admin only
			super := admin.Group("")
			super.Use(middleware.RequireSuperAdmin())
			{
				super.POST("/admins", authH.CreateAdmin)
				super.GET("/admins", authH.ListAdmins)
			}
		}
	}

	return r
}
