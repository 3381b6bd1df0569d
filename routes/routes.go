package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"visapoint/handlers"
	"visapoint/middleware"
	"visapoint/utils"
)

// Options are the route-level settings read from config.
type Options struct {
	AllowOrigins      []string
	AdminLoginPath    string
	MaxRequestsPerMin int
}

// RegisterHealthRoutes registers the health and metrics endpoints.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code, label := http.StatusOK, "ok"
		if !status.CheckedAt.IsZero() && !status.Mongo {
			code, label = http.StatusServiceUnavailable, "degraded"
		}
		c.JSON(code, gin.H{"status": label, "message": "Hi, I'm VisaPoint", "dependencies": status})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterPublicRoutes registers the catalog and legal pages.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/services", hb.ListServices)
		api.GET("/services/:slug", hb.GetService)
		api.GET("/legal", hb.GetLegalSections)
		api.GET("/legal/:id", hb.GetLegalSection)
	}
}

// RegisterWizardRoutes registers the application wizard. Sign-in is optional;
// a signed-in applicant skips the account step.
func RegisterWizardRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	wizard := r.Group("/api/wizard/sessions")
	{
		wizard.Use(middleware.OptionalSession(hb.Sessions))
		wizard.POST("", hb.StartWizardSession)
		wizard.GET("/:id", hb.GetWizardSession)
		wizard.POST("/:id/events", hb.DispatchWizardEvent)
		wizard.POST("/:id/documents/:kind", hb.AttachWizardDocument)
		wizard.DELETE("/:id/documents/:kind", hb.RemoveWizardDocument)
		wizard.POST("/:id/payment/check", hb.CheckWizardPayment)
		wizard.DELETE("/:id/payment/poll", hb.StopWizardPaymentPoll)
	}
}

// RegisterPaymentRoutes registers the gateway return URL and webhook.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	payments := r.Group("/api/payments")
	{
		payments.GET("/callback", hb.PaymentCallback)
		payments.POST("/webhook", hb.PaymentWebhook)
	}
}

// RegisterAuthRoutes registers applicant login/logout and the admin login path.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle, adminLoginPath string) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", hb.Login)

		auth.Use(middleware.SessionAuth(hb.Sessions))
		auth.POST("/logout", hb.Logout)
		auth.GET("/me", hb.Me)
	}
	if adminLoginPath != "" {
		r.POST(adminLoginPath, hb.AdminLogin)
	}
}

// RegisterClientRoutes registers the signed-in applicant's dashboard.
func RegisterClientRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	client := r.Group("/api/client")
	{
		client.Use(middleware.SessionAuth(hb.Sessions))
		client.GET("/applications", hb.ListMyApplications)
		client.GET("/applications/:id", hb.GetMyApplication)
		client.POST("/applications/:id/pay", hb.PayApplication)
		client.GET("/invoices", hb.ListMyInvoices)
		client.GET("/documents", hb.ListMyDocuments)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.SessionAuth(hb.Sessions), middleware.RequireAdmin())

	apps := adminGroup.Group("/applications")
	{
		apps.GET("", hb.AdminListApplications)
		apps.GET("/export", hb.AdminExportApplications)
		apps.POST("/bulk/status", hb.AdminBulkStatus)
		apps.POST("/bulk/delete", hb.AdminBulkDelete)
		apps.GET("/:id", hb.AdminGetApplication)
		apps.GET("/:id/statuses", hb.AdminStatusHistory)
		apps.PUT("/:id/status", hb.AdminUpdateStatus)
		apps.DELETE("/:id", hb.AdminDeleteApplication)
	}

	invoices := adminGroup.Group("/invoices")
	{
		invoices.GET("", hb.AdminListInvoices)
		invoices.POST("", hb.AdminCreateInvoice)
		invoices.POST("/bulk/status", hb.AdminBulkInvoiceStatus)
		invoices.POST("/bulk/delete", hb.AdminBulkDeleteInvoices)
		invoices.PUT("/:id", hb.AdminUpdateInvoice)
	}

	services := adminGroup.Group("/services")
	{
		services.GET("", hb.AdminListServices)
		services.POST("", hb.CreateService)
		services.POST("/reorder", hb.ReorderServices)
		services.PUT("/:id", hb.UpdateService)
		services.PATCH("/:id/active", hb.ToggleService)
		services.DELETE("/:id", hb.DeleteService)
	}

	documents := adminGroup.Group("/documents")
	{
		documents.POST("", hb.AdminUploadDocument)
		documents.DELETE("/:id", hb.AdminDeleteDocument)
	}

	adminGroup.POST("/payments/reconcile", hb.AdminRunReconcile)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: origins[0] != "*",
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin))

	RegisterHealthRoutes(r)
	RegisterPublicRoutes(r, hb)
	RegisterWizardRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterAuthRoutes(r, hb, opts.AdminLoginPath)
	RegisterClientRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
