package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/billing/billing"
	"github.com/yourusername/billing/config"
	"github.com/yourusername/billing/middleware"
	"gorm.io/gorm"
)

// NewRouter wires the admin API. All entity and generation endpoints sit
// behind JWT auth; mutating generation endpoints additionally require the
// admin role.
func NewRouter(db *gorm.DB, cfg *config.Config, gen *billing.Generator, monitor *billing.Monitor) *gin.Engine {
	router := gin.Default()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "billing-api",
		})
	})

	authHandler := NewAuthHandler(db, cfg)
	clientHandler := NewClientHandler(db)
	subscriptionHandler := NewSubscriptionHandler(db)
	workLogHandler := NewWorkLogHandler(db)
	invoiceHandler := NewInvoiceHandler(db, gen, monitor)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)

		authed := api.Group("")
		authed.Use(middleware.JwtAuthMiddleware(cfg))
		{
			authed.GET("/clients", clientHandler.ListClients)
			authed.GET("/clients/:id", clientHandler.GetClient)

			authed.GET("/subscriptions", subscriptionHandler.ListSubscriptions)
			authed.GET("/worklogs", workLogHandler.ListWorkLogs)

			authed.GET("/invoices", invoiceHandler.ListInvoices)
			authed.GET("/invoices/:id", invoiceHandler.GetInvoice)
		}

		admin := authed.Group("")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/clients", clientHandler.CreateClient)
			admin.PUT("/clients/:id", clientHandler.UpdateClient)
			admin.POST("/clients/:id/emails", clientHandler.AddClientEmail)
			admin.DELETE("/clients/:id/emails/:emailId", clientHandler.RemoveClientEmail)

			admin.POST("/subscriptions", subscriptionHandler.CreateSubscription)
			admin.PUT("/subscriptions/:id", subscriptionHandler.UpdateSubscription)

			admin.POST("/worklogs", workLogHandler.CreateWorkLog)
			admin.PUT("/worklogs/:id", workLogHandler.UpdateWorkLog)
			admin.DELETE("/worklogs/:id", workLogHandler.DeleteWorkLog)

			admin.POST("/invoices/:id/paid", invoiceHandler.MarkPaid)
			admin.POST("/invoices/:id/resend", invoiceHandler.ResendInvoice)
			admin.POST("/invoices/generate-monthly", invoiceHandler.GenerateMonthly)
			admin.POST("/invoices/generate-manual", invoiceHandler.GenerateManual)
			admin.POST("/invoices/check-hosting", invoiceHandler.RunHostingCheck)
		}
	}

	return router
}
