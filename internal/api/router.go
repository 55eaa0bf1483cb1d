package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/api/handlers"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/api/middleware"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/config"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, svcs *service.Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Settlement API",
			"endpoints": []string{
				"GET /health",
				"POST /v1/checkout",
				"POST /v1/payments/initiate",
				"POST /v1/payments/standalone",
				"GET /v1/payments/:reference/status",
				"POST /v1/invoices/:id/pay",
				"POST /webhooks/payment",
				"GET /v1/orders/:id",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider callback: signature is verified inside the reconciler
	router.POST("/webhooks/payment", handlers.HandlePaymentWebhook(svcs, logger))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		checkoutRoutes := v1.Group("")
		checkoutRoutes.Use(middleware.IdempotencyMiddleware(repos, logger))
		{
			checkoutRoutes.POST("/checkout", handlers.HandleCheckout(repos, svcs, logger))
		}

		v1.POST("/payments/initiate", handlers.HandleInitiatePayment(svcs, logger))
		v1.POST("/payments/standalone", handlers.HandleStandalonePayment(svcs, logger))
		v1.GET("/payments/:reference/status", handlers.HandlePaymentStatus(svcs, logger))
		v1.POST("/invoices/:id/pay", handlers.HandleInvoicePay(svcs, logger))
		v1.GET("/orders/:id", handlers.HandleGetOrder(repos, logger))

		// Back-office routes (require admin API key)
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AdminAuthMiddleware(cfg, logger))
		{
			adminRoutes.GET("/orders", handlers.HandleListOrders(svcs, logger))
			adminRoutes.PATCH("/orders/:id/status", handlers.HandleUpdateOrderStatus(svcs, logger))
			adminRoutes.GET("/stock-movements", handlers.HandleListStockMovements(svcs, logger))
			adminRoutes.POST("/invoices/standalone", handlers.HandleStandaloneInvoice(svcs, logger))
			adminRoutes.POST("/invoices/:id/reissue", handlers.HandleReissueInvoice(svcs, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
