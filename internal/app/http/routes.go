package routes

import (
	"net/http"
	"time"

	"barbergate/config"
	adminapi "barbergate/internal/api/admin"
	authapi "barbergate/internal/api/auth"
	"barbergate/internal/api/billing"
	bookingsapi "barbergate/internal/api/bookings"
	"barbergate/internal/api/chat"
	"barbergate/internal/api/paymentwebhook"
	tenantsapi "barbergate/internal/api/tenants"
	usersapi "barbergate/internal/api/users"
	"barbergate/internal/app/http/middleware"
	"barbergate/internal/jobs"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the stateful handlers built in main; package-level
// handlers register themselves directly.
type Handlers struct {
	Webhook   *paymentwebhook.Handler
	Bookings  *bookingsapi.Handler
	Billing   *billing.Handler
	Chat      *chat.Handler
	Reminders *jobs.ReminderJob
}

func RegisterRoutes(r *gin.Engine, h *Handlers) {
	r.POST("/webhook/mercadopago", h.Webhook.HandleWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Scheduler entrypoint. Guarded by a shared secret, not a user token.
	r.POST("/jobs/check-reminders", func(c *gin.Context) {
		if config.CRON_SECRET == "" || c.GetHeader("Authorization") != "Bearer "+config.CRON_SECRET {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		run, err := h.Reminders.Run(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run": run})
			return
		}
		c.JSON(http.StatusOK, run)
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/verify", authapi.VerifyEmail)
	public.POST("/resend-verification", authapi.ResendVerification)
	public.POST("/request-password-reset", authapi.RequestPasswordReset)
	public.POST("/reset-password", authapi.ResetPassword)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Tenant resolution for the SPA router
	r.GET("/barbershops/by-slug/:slug", tenantsapi.GetBySlug)
	r.GET("/barbershops/official", tenantsapi.GetOfficial)
	r.GET("/barbershops/exists/:slug", tenantsapi.CheckExists)
	r.HEAD("/barbershops/exists/:slug", tenantsapi.CheckExists)

	// Tenant-scoped storefront under /b/:slug
	tenant := r.Group("/b/:slug")
	tenant.Use(middleware.TenantBySlug(), middleware.OptionalAuth())
	registerStorefront(tenant, h)

	// The official barbershop serves the same storefront at the root.
	official := r.Group("/")
	official.Use(middleware.TenantOfficial(), middleware.OptionalAuth())
	registerStorefront(official, h)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", usersapi.GetMe)
	auth.POST("/change-password", authapi.ChangePassword)
	auth.GET("/my/payments", h.Billing.ListMyPayments)
	auth.GET("/my/subscriptions", h.Billing.ListMySubscriptions)
	auth.GET("/my/notifications", h.Billing.ListMyNotifications)
	auth.POST("/my/notifications/:id/read", h.Billing.MarkNotificationRead)

	// Owner routes, gated on trial/subscription state
	owner := auth.Group("/my")
	owner.Use(middleware.RequireActiveAccess())
	owner.GET("/stats", adminapi.GetOwnerStats)
	owner.GET("/bookings", adminapi.ListBookings)
	owner.GET("/clients", adminapi.ListClients)
	owner.PUT("/barbershop", tenantsapi.UpdateMine)
	owner.POST("/services", adminapi.CreateService)
	owner.PUT("/services/:id", adminapi.UpdateService)
	owner.POST("/professionals", adminapi.CreateProfessional)
	owner.PUT("/professionals/:id", adminapi.UpdateProfessional)
	owner.POST("/plans", adminapi.CreatePlan)
	owner.GET("/notification-settings", adminapi.GetNotificationSettings)
	owner.PUT("/notification-settings", adminapi.UpdateNotificationSettings)
	owner.GET("/notification-templates", adminapi.ListTemplates)
	owner.PUT("/notification-templates", adminapi.UpsertTemplate)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/stats", adminapi.GetAdminStats)
	admin.GET("/barbershops", adminapi.ListAllBarbershops)
	admin.POST("/barbershops/ensure-official", tenantsapi.EnsureOfficial)
}

// registerStorefront wires the customer-facing endpoints shared by the slug
// and official groups. The tenant middleware has already bound the shop.
func registerStorefront(g *gin.RouterGroup, h *Handlers) {
	g.GET("/services", h.Bookings.ListServices)
	g.GET("/professionals", h.Bookings.ListProfessionals)
	g.POST("/bookings", h.Bookings.CreateBooking)
	g.POST("/bookings/:id/cancel", h.Bookings.CancelBooking)
	g.GET("/plans", h.Billing.ListPlans)
	g.POST("/checkout", h.Billing.CreateCheckout)
	g.POST("/chat", middleware.RateLimit(20, time.Minute), h.Chat.Chat)
}
